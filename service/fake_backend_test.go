package service

import (
	"context"
	"errors"
	"sync"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
)

// fakeBackend records calls and answers through overridable hooks. By default
// an upload without a session opens "S-<category>" and one with a session
// echoes it, as the real backend does.
type fakeBackend struct {
	mu        sync.Mutex
	uploads   []UploadRequest
	parsed    []model.Category
	deleted   []string
	generated []string

	uploadFn   func(ctx context.Context, req UploadRequest) (*model.UploadResponse, error)
	parseFn    func(ctx context.Context, category model.Category) (*model.SmartParseResult, error)
	generateFn func(ctx context.Context, sessionID string) (*model.GenerationResult, error)

	monthly     *model.MonthlyComparison
	productCost *model.ProductCostAnalysis
	simulation  *model.CostSimulationResult
	sensitivity *model.SensitivityResult
	analysisErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (f *fakeBackend) SmartParse(ctx context.Context, file UploadFile, category model.Category) (*model.SmartParseResult, error) {
	f.mu.Lock()
	f.parsed = append(f.parsed, category)
	fn := f.parseFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, category)
	}
	return &model.SmartParseResult{
		OriginalColumns: []string{"거래처"},
		MappedColumns:   map[string]string{"거래처": "거래처명"},
		RowCount:        10,
	}, nil
}

func (f *fakeBackend) UploadCategory(ctx context.Context, req UploadRequest) (*model.UploadResponse, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, req)
	fn := f.uploadFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "S-" + string(req.Category)
	}
	return &model.UploadResponse{Success: true, SessionID: sessionID, DataType: req.Category, Rows: 10}, nil
}

func (f *fakeBackend) SessionStatus(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	return &model.SessionStatus{SessionID: sessionID}, nil
}

func (f *fakeBackend) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func (f *fakeBackend) GenerateStatement(ctx context.Context, sessionID string, includeAI bool) (*model.GenerationResult, error) {
	f.mu.Lock()
	f.generated = append(f.generated, sessionID)
	fn := f.generateFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, sessionID)
	}
	return nil, apperr.Backend("no generator configured")
}

func (f *fakeBackend) MonthlyComparison(ctx context.Context, q MonthlyQuery, includeAI bool) (*model.MonthlyComparison, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.monthly, nil
}

func (f *fakeBackend) ProductCost(ctx context.Context, period string, includeAI bool) (*model.ProductCostAnalysis, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.productCost, nil
}

func (f *fakeBackend) SimulateCost(ctx context.Context, input model.CostSimulationInput, period string, includeAI bool) (*model.CostSimulationResult, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.simulation, nil
}

func (f *fakeBackend) Sensitivity(ctx context.Context, period string) (*model.SensitivityResult, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.sensitivity, nil
}

func (f *fakeBackend) uploadCalls() []UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]UploadRequest(nil), f.uploads...)
}

func (f *fakeBackend) deletedSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeBackend) generateCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.generated...)
}

type fakeArchiver struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (a *fakeArchiver) Archive(ctx context.Context, workspace string, category model.Category, file UploadFile) (string, error) {
	if a.fail {
		return "", errors.New("bucket unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := workspace + "/" + string(category) + "/" + file.Filename
	a.keys = append(a.keys, key)
	return key, nil
}
