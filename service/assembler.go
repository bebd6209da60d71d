package service

import (
	"context"
	"sync"
	"time"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

type StatementBackend interface {
	GenerateStatement(ctx context.Context, sessionID string, includeAI bool) (*model.GenerationResult, error)
}

// StatementAssembler generates the income statement of a session and
// publishes it to the view store as a single-period dataset.
type StatementAssembler struct {
	backend   StatementBackend
	view      *ViewStore
	includeAI bool
	now       func() time.Time

	mu     sync.RWMutex
	latest *model.GenerationResult
	epoch  uint64 // bumped by Clear
}

func NewStatementAssembler(backend StatementBackend, view *ViewStore, includeAI bool) *StatementAssembler {
	return &StatementAssembler{
		backend:   backend,
		view:      view,
		includeAI: includeAI,
		now:       time.Now,
	}
}

// Generate requests the statement and, on success, stores the raw result and
// replaces the profit/loss slot in one write. On failure nothing changes.
// A result that arrives after Clear is returned but not stored.
func (a *StatementAssembler) Generate(ctx context.Context, sessionID string) (*model.GenerationResult, error) {
	if sessionID == "" {
		return nil, apperr.Precondition("매출전표 업로드 후 손익계산서를 생성할 수 있습니다.")
	}

	a.mu.RLock()
	epoch := a.epoch
	a.mu.RUnlock()

	result, err := a.backend.GenerateStatement(ctx, sessionID, a.includeAI)
	if err != nil {
		logger.Warn(ctx, "statement generation failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	now := a.now()
	result.ReceivedAt = now
	period := model.PeriodLabel(now)
	dataset := &model.ProfitLossData{
		Periods: []string{period},
		Items:   TranslateStatement(result.IncomeStatement, period),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.epoch != epoch {
		logger.Info(ctx, "discarding statement generated before reset", "session_id", sessionID)
		return result, nil
	}
	a.latest = result
	a.view.SetProfitLoss(dataset)

	logger.Info(ctx, "statement generated",
		"session_id", sessionID,
		"period", period,
		"items", len(dataset.Items),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// Latest returns the last successfully generated result.
func (a *StatementAssembler) Latest() (*model.GenerationResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest, a.latest != nil
}

// Clear drops the latest result and invalidates generations still in flight.
func (a *StatementAssembler) Clear() {
	a.mu.Lock()
	a.latest = nil
	a.epoch++
	a.mu.Unlock()
}
