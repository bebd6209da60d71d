package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
)

// Backend is everything a workflow needs from the external service.
type Backend interface {
	SyncBackend
	StatementBackend
	AnalysisBackend
}

// Workflow is the per-workspace instance of the ERP sync workflow.
type Workflow struct {
	ID          string
	Workspace   string
	Coordinator *UploadCoordinator
	Assembler   *StatementAssembler
	View        *ViewStore
	Analysis    *AnalysisService
	CreatedAt   time.Time
	lastUsed    time.Time
}

func NewWorkflow(workspace string, backend Backend, archive Archiver, cfg *config.SyncConfig) *Workflow {
	view := NewViewStore()
	now := time.Now()
	return &Workflow{
		ID:          uuid.NewString(),
		Workspace:   workspace,
		Coordinator: NewUploadCoordinator(workspace, backend, archive, cfg.SmartParsingEnabled()),
		Assembler:   NewStatementAssembler(backend, view, cfg.IncludeAIEnabled()),
		View:        view,
		Analysis:    NewAnalysisService(backend, view, cfg.IncludeAIEnabled()),
		CreatedAt:   now,
		lastUsed:    now,
	}
}

// Reset discards uploads, the session, the latest statement and every view slot.
func (w *Workflow) Reset(ctx context.Context) {
	w.Coordinator.Reset(ctx)
	w.Assembler.Clear()
	w.View.Reset()
}

// Registry keeps one workflow per workspace in memory.
type Registry struct {
	backend Backend
	archive Archiver
	sync    *config.SyncConfig

	mu            sync.Mutex
	workflows     map[string]*Workflow
	maxWorkspaces int // 0 = unlimited
}

func NewRegistry(backend Backend, archive Archiver, syncCfg *config.SyncConfig, wsCfg *config.WorkspaceConfig) *Registry {
	maxWorkspaces := wsCfg.MaxWorkspaces
	if maxWorkspaces < 0 {
		maxWorkspaces = 0
	}
	slog.Info("workspace registry initialized", "max_workspaces", maxWorkspaces)
	return &Registry{
		backend:       backend,
		archive:       archive,
		sync:          syncCfg,
		workflows:     make(map[string]*Workflow),
		maxWorkspaces: maxWorkspaces,
	}
}

// Get returns the workflow of a workspace, creating it on first use.
func (r *Registry) Get(workspace string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wf, ok := r.workflows[workspace]; ok {
		wf.lastUsed = time.Now()
		return wf
	}

	wf := NewWorkflow(workspace, r.backend, r.archive, r.sync)
	r.workflows[workspace] = wf
	slog.Info("workflow created", "workspace", workspace, "workflow_id", wf.ID)
	r.cleanupIfNeeded(workspace)
	return wf
}

// Remove drops a workspace's workflow without touching the remote session.
func (r *Registry) Remove(workspace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, workspace)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workflows)
}

// cleanupIfNeeded evicts the least recently used workflows, never keep and
// never one with an upload in flight. Evicted workflows are reset in the
// background so their remote sessions are deleted.
// Must be called with lock held.
func (r *Registry) cleanupIfNeeded(keep string) {
	if r.maxWorkspaces <= 0 || len(r.workflows) <= r.maxWorkspaces {
		return
	}

	workflows := make([]*Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		if wf.Workspace != keep && !wf.Coordinator.Busy() {
			workflows = append(workflows, wf)
		}
	}
	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].lastUsed.Before(workflows[j].lastUsed)
	})

	removeCount := len(r.workflows) - r.maxWorkspaces
	for i := 0; i < removeCount && i < len(workflows); i++ {
		slog.Info("evicting idle workflow",
			"workspace", workflows[i].Workspace,
			"last_used", workflows[i].lastUsed,
		)
		delete(r.workflows, workflows[i].Workspace)
		go workflows[i].Reset(context.Background())
	}
}
