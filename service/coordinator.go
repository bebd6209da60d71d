package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

// SyncBackend is the part of the backend used by the upload workflow.
type SyncBackend interface {
	SmartParse(ctx context.Context, file UploadFile, category model.Category) (*model.SmartParseResult, error)
	UploadCategory(ctx context.Context, req UploadRequest) (*model.UploadResponse, error)
	SessionStatus(ctx context.Context, sessionID string) (*model.SessionStatus, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Archiver stores a copy of a raw upload and returns its key.
type Archiver interface {
	Archive(ctx context.Context, workspace string, category model.Category, file UploadFile) (string, error)
}

// UploadCoordinator tracks one record per category and the upload session
// shared by all categories of a workspace.
type UploadCoordinator struct {
	workspace string
	backend   SyncBackend
	archive   Archiver

	mu           sync.RWMutex
	records      map[model.Category]*model.CategoryUpload
	tickets      map[model.Category]uint64
	seq          uint64
	sessionID    string
	smartParsing bool
	batchLimit   int
	now          func() time.Time
}

func NewUploadCoordinator(workspace string, backend SyncBackend, archive Archiver, smartParsing bool) *UploadCoordinator {
	return &UploadCoordinator{
		workspace:    workspace,
		backend:      backend,
		archive:      archive,
		records:      make(map[model.Category]*model.CategoryUpload),
		tickets:      make(map[model.Category]uint64),
		smartParsing: smartParsing,
		batchLimit:   len(model.Categories),
		now:          time.Now,
	}
}

// SubmitFile runs the full intake sequence for one category and returns the
// record this attempt produced. Server and transport failures end up in the
// record, not in the returned error, which only reports invalid input.
// If a newer submission for the same category started meanwhile, the result
// of this attempt is returned but not stored.
func (c *UploadCoordinator) SubmitFile(ctx context.Context, category model.Category, file UploadFile) (model.CategoryUpload, error) {
	if !category.Valid() {
		return model.CategoryUpload{}, apperr.Validation(fmt.Sprintf("알 수 없는 데이터 유형입니다: %q", category))
	}
	if !model.IsSpreadsheet(file.Filename) {
		return model.CategoryUpload{}, apperr.Validation("엑셀 파일(.xlsx, .xls)만 업로드할 수 있습니다.")
	}

	ctx = logger.WithValue(ctx, logger.CategoryKey, string(category))
	ticket, sessionID, smartParsing := c.begin(category, file.Filename)

	var parsed *model.SmartParseResult
	if smartParsing && category.SmartParsable() {
		result, err := c.backend.SmartParse(ctx, file, category)
		if err != nil {
			logger.Warn(ctx, "smart parsing failed, uploading without column mapping", "error", err)
		} else {
			parsed = result
		}
	}

	var archiveKey string
	if c.archive != nil {
		key, err := c.archive.Archive(ctx, c.workspace, category, file)
		if err != nil {
			logger.Warn(ctx, "failed to archive upload", "filename", file.Filename, "error", err)
		} else {
			archiveKey = key
		}
	}

	resp, err := c.backend.UploadCategory(ctx, UploadRequest{
		File:          file,
		Category:      category,
		SessionID:     sessionID,
		ColumnMapping: parsed.ColumnMapping(),
	})

	completedAt := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	record := c.pendingRecord(category, file.Filename, ticket)
	record.SmartParse = parsed
	record.ArchiveKey = archiveKey
	record.CompletedAt = &completedAt

	if err != nil {
		record.Status = model.StatusError
		record.ErrorMsg = apperr.UserMessage(err)
		logger.Warn(ctx, "category upload failed", "filename", file.Filename, "error", err)
	} else {
		record.Status = model.StatusSuccess
		record.Rows = resp.Rows
		record.Columns = resp.Columns
		record.Preview = resp.Preview
		record.SessionID = resp.SessionID
	}

	if c.tickets[category] != ticket {
		logger.Info(ctx, "discarding stale upload result", "ticket", ticket, "latest", c.tickets[category])
		return *record, nil
	}

	if err == nil && c.sessionID == "" && resp.SessionID != "" {
		c.sessionID = resp.SessionID
		logger.Info(ctx, "upload session opened", "session_id", resp.SessionID)
	}
	c.records[category] = record
	logger.Info(ctx, "category upload finished", "status", record.Status, "rows", record.Rows)
	return *record, nil
}

// begin registers a new attempt for category and snapshots the session id
// and smart-parsing switch it will use.
func (c *UploadCoordinator) begin(category model.Category, filename string) (uint64, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	ticket := c.seq
	c.tickets[category] = ticket
	c.records[category] = &model.CategoryUpload{
		Category:  category,
		Filename:  filename,
		Status:    model.StatusUploading,
		StartedAt: c.now(),
	}
	return ticket, c.sessionID, c.smartParsing
}

// pendingRecord returns a copy of the uploading record for ticket, or a fresh
// one when it has already been replaced. Must be called with lock held.
func (c *UploadCoordinator) pendingRecord(category model.Category, filename string, ticket uint64) *model.CategoryUpload {
	if c.tickets[category] == ticket {
		if r, ok := c.records[category]; ok {
			cp := *r
			return &cp
		}
	}
	return &model.CategoryUpload{
		Category:  category,
		Filename:  filename,
		StartedAt: c.now(),
	}
}

// SubmitBatch submits several categories. Each category runs independently;
// only invalid input aborts the batch. Until a session exists, files go one
// at a time in display order so that every category lands in the session the
// first success opens. The remaining files are then sent concurrently.
func (c *UploadCoordinator) SubmitBatch(ctx context.Context, files map[model.Category]UploadFile) ([]model.CategoryUpload, error) {
	for category, file := range files {
		if !category.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("알 수 없는 데이터 유형입니다: %q", category))
		}
		if !model.IsSpreadsheet(file.Filename) {
			return nil, apperr.Validation(fmt.Sprintf("%s: 엑셀 파일(.xlsx, .xls)만 업로드할 수 있습니다.", category.Label()))
		}
	}

	results := make([]model.CategoryUpload, 0, len(files))
	pending := make(map[model.Category]UploadFile, len(files))
	for category, file := range files {
		pending[category] = file
	}

	for _, category := range model.Categories {
		if c.SessionID() != "" {
			break
		}
		file, ok := pending[category]
		if !ok {
			continue
		}
		delete(pending, category)
		record, err := c.SubmitFile(ctx, category, file)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.batchLimit)

	for category, file := range pending {
		g.Go(func() error {
			record, err := c.SubmitFile(ctx, category, file)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, record)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortRecords(results)
	return results, nil
}

// Records returns a snapshot of every category record in display order.
func (c *UploadCoordinator) Records() []model.CategoryUpload {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.CategoryUpload, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, *r)
	}
	sortRecords(out)
	return out
}

func (c *UploadCoordinator) Record(category model.Category) (model.CategoryUpload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.records[category]
	if !ok {
		return model.CategoryUpload{}, false
	}
	return *r, true
}

func (c *UploadCoordinator) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// CanGenerate reports whether the sales category has been uploaded successfully.
func (c *UploadCoordinator) CanGenerate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records[model.CategorySales].Succeeded()
}

// Busy reports whether any category upload is still in flight.
func (c *UploadCoordinator) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.Status == model.StatusUploading {
			return true
		}
	}
	return false
}

func (c *UploadCoordinator) SetSmartParsing(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.smartParsing = enabled
}

func (c *UploadCoordinator) SmartParsing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.smartParsing
}

// RemoteStatus asks the backend what it holds for the current session.
func (c *UploadCoordinator) RemoteStatus(ctx context.Context) (*model.SessionStatus, error) {
	sessionID := c.SessionID()
	if sessionID == "" {
		return nil, apperr.Precondition("업로드 세션이 없습니다.")
	}
	return c.backend.SessionStatus(ctx, sessionID)
}

// Reset discards every record and the session. In-flight uploads started
// before the reset are dropped when they complete. The remote session is
// deleted best-effort.
func (c *UploadCoordinator) Reset(ctx context.Context) {
	c.mu.Lock()
	sessionID := c.sessionID
	c.sessionID = ""
	c.records = make(map[model.Category]*model.CategoryUpload)
	c.tickets = make(map[model.Category]uint64)
	c.mu.Unlock()

	if sessionID == "" {
		return
	}
	if err := c.backend.DeleteSession(ctx, sessionID); err != nil {
		logger.Warn(ctx, "failed to delete remote session", "session_id", sessionID, "error", err)
	}
}

func sortRecords(records []model.CategoryUpload) {
	order := make(map[model.Category]int, len(model.Categories))
	for i, c := range model.Categories {
		order[c] = i
	}
	sort.Slice(records, func(i, j int) bool {
		return order[records[i].Category] < order[records[j].Category]
	})
}
