package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

const testWorkspace = "plant-a"

// mockBackend imitates the external analysis service. An upload without a
// session opens "S-<category>"; one with a session stays in it.
type mockBackend struct {
	mu              sync.Mutex
	uploadFailures  map[string]string
	mappings        map[string]string
	parseCalls      int
	uploadCalls     int
	simulationCalls int
	deleted         []string
	sensitivityFail string
}

func (m *mockBackend) routes(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/smart-parser/analyze", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.parseCalls++
		m.mu.Unlock()
		w.Write([]byte(`{"original_columns": ["거래처"], "mapped_columns": {"거래처": "거래처명"}, "row_count": 3}`))
	})

	mux.HandleFunc("POST /api/erp-sync/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("backend could not parse upload: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		category := r.FormValue("data_type")
		sessionID := r.FormValue("session_id")
		if sessionID == "" {
			sessionID = "S-" + category
		}

		m.mu.Lock()
		m.uploadCalls++
		m.mappings[category] = r.FormValue("column_mapping")
		reason := m.uploadFailures[category]
		m.mu.Unlock()

		if reason != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": reason, "found_columns": []string{"일자"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"session_id": sessionID,
			"data_type":  category,
			"rows":       3,
			"columns":    []string{"전표일자", "원화환산액"},
		})
	})

	mux.HandleFunc("GET /api/erp-sync/session/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"session_id":           r.PathValue("id"),
			"missing_data":         []string{"payroll"},
			"ready_for_processing": true,
		})
	})

	mux.HandleFunc("DELETE /api/erp-sync/session/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.deleted = append(m.deleted, r.PathValue("id"))
		m.mu.Unlock()
		w.Write([]byte(`{"success": true}`))
	})

	mux.HandleFunc("POST /api/erp-sync/session/{id}/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "session_id": "` + r.PathValue("id") + `", "result": {
			"period": "2025-01",
			"income_statement": {
				"revenue": {"total": 100, "export": 60, "domestic": 40},
				"cost_of_goods_sold": {"total": 70, "breakdown": {"raw_materials": 50, "direct_labor": 10, "manufacturing_overhead": 10}},
				"gross_profit": 30,
				"selling_admin_expenses": {"total": 10, "breakdown": {"sg_expenses": 8, "indirect_labor": 2}},
				"operating_profit": 20
			}
		}}`))
	})

	mux.HandleFunc("GET /api/erp-sync/template-info", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "templates": {"sales": {"name": "매출전표", "required_columns": ["전표일자", "원화환산액"], "optional_columns": ["비고"], "example": {"전표일자": "2025-01-15"}}}, "minimum_required": ["sales"]}`))
	})

	mux.HandleFunc("POST /api/analysis/monthly", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("기준월") == "" {
			w.Write([]byte(`{"success": true, "data": {"기간": "2025년 01월", "ai_comment": "단일 기간"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"기준월": q.Get("기준월"), "비교월": q.Get("비교월")},
		})
	})

	mux.HandleFunc("POST /api/simulation/cost", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.simulationCalls++
		m.mu.Unlock()
		w.Write([]byte(`{"success": true, "data": {"기준_영업이익": 100, "예상_영업이익": 80, "영업이익_변동액": -20}}`))
	})

	mux.HandleFunc("GET /api/simulation/sensitivity", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		reason := m.sensitivityFail
		m.mu.Unlock()
		if reason != "" {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "data": nil, "error": reason})
			return
		}
		w.Write([]byte(`{"success": true, "data": {"기간": "2025년 01월", "sensitivity": [{"항목": "냉연강판", "영업이익_영향도": -1.2}]}}`))
	})

	mux.HandleFunc("GET /api/documents/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": [
			{"file_id": "d1", "doc_type": "bl", "status": "parsed", "reference_no": "MSKU1234567"},
			{"file_id": "d3", "doc_type": "lc", "status": "parsed", "parsed_data": {"lc_no": "LC-77"}}
		]}`))
	})

	mux.HandleFunc("GET /api/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "d2" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "문서를 찾을 수 없습니다."}`))
			return
		}
		w.Write([]byte(`{"success": true, "data": {"file_id": "d2", "doc_type": "invoice", "parsed_data": {"invoice_no": "INV-2025-001", "currency": "USD"}}}`))
	})

	mux.HandleFunc("GET /api/receivables/list", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "overdue" || q.Get("customer") != "acme" || q.Get("limit") != "5" {
			t.Errorf("Unexpected receivables query %v", q)
		}
		w.Write([]byte(`{"success": true, "data": [{"invoice_no": "INV-2025-003", "customer": "ACME Steel", "amount_usd": 12500.5, "amount_krw": 16250650, "days_overdue": 45, "status": "overdue", "paid": false}], "total": 3}`))
	})

	mux.HandleFunc("GET /api/receivables/summary", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"total_outstanding_usd": 30000, "total_outstanding_krw": 39000000, "overdue_amount_usd": 12500.5, "overdue_ratio": 41.7, "aging": {"current": 17499.5, "30_days": 0, "60_days": 12500.5, "90_days_plus": 0}, "count": {"total": 3, "overdue": 1}}}`))
	})

	mux.HandleFunc("GET /api/receivables/aging", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": [{"customer": "ACME Steel", "current": 0, "30_days": 0, "60_days": 12500.5, "90_days_plus": 0, "total": 12500.5}]}`))
	})

	mux.HandleFunc("GET /api/receivables/payables/list", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("supplier"); got != "POSCO" {
			t.Errorf("Expected supplier filter, got %q", got)
		}
		w.Write([]byte(`{"success": true, "data": [{"id": "AP-001", "supplier": "POSCO", "due_date": "2025-03-16", "amount_krw": 42500000, "amount_usd": 0, "status": "pending", "days_until_due": 15, "material": "냉연강판"}], "total": 1}`))
	})

	mux.HandleFunc("GET /api/receivables/payables/summary", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "매입채무 데이터를 불러올 수 없습니다."}`))
	})

	mux.HandleFunc("GET /api/reports/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("include_ai") != "true" {
			t.Errorf("Expected include_ai=true, got %v", r.URL.Query())
		}
		w.Write([]byte(`{"success": true, "data": {"기간": "2025년 01월", "periods_available": ["2025년 01월"], "monthly_summary": {"매출액": 100, "영업이익": 20, "변동률": null}, "product_summary": [{"제품군": "냉연", "매출액": 60, "이익률": 25.5}], "ai_comment": "영업이익률 20%"}}`))
	})

	return mux
}

type backendCalls struct {
	parse      int
	upload     int
	simulation int
	deleted    []string
}

func (m *mockBackend) calls() backendCalls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return backendCalls{
		parse:      m.parseCalls,
		upload:     m.uploadCalls,
		simulation: m.simulationCalls,
		deleted:    append([]string(nil), m.deleted...),
	}
}

func (m *mockBackend) mapping(category string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mappings[category]
}

func (m *mockBackend) failUpload(category, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadFailures[category] = reason
}

func (m *mockBackend) failSensitivity(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sensitivityFail = reason
}

// fakeArchive stores nothing and signs keys with a fixed host.
type fakeArchive struct{}

func (fakeArchive) Archive(ctx context.Context, workspace string, category model.Category, file service.UploadFile) (string, error) {
	return workspace + "/" + string(category) + "/" + file.Filename, nil
}

func (fakeArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	return "https://archive.test/" + key, nil
}

type testEnv struct {
	backend  *mockBackend
	server   *httptest.Server
	registry *service.Registry
	router   *gin.Engine
}

type envOption func(*envOptions)

type envOptions struct {
	archive   service.Archiver
	presigner Presigner
	maxMB     int
}

func withArchive() envOption {
	return func(o *envOptions) {
		o.archive = fakeArchive{}
		o.presigner = fakeArchive{}
	}
}

func withMaxUploadMB(mb int) envOption {
	return func(o *envOptions) { o.maxMB = mb }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	o := envOptions{maxMB: 4}
	for _, opt := range opts {
		opt(&o)
	}

	mock := &mockBackend{uploadFailures: map[string]string{}, mappings: map[string]string{}}
	server := httptest.NewServer(mock.routes(t))
	t.Cleanup(server.Close)

	client := service.NewBackendClient(&config.BackendConfig{BaseURL: server.URL, TimeoutSeconds: 5})
	syncCfg := &config.SyncConfig{MaxUploadMB: o.maxMB}
	registry := service.NewRegistry(client, o.archive, syncCfg, &config.WorkspaceConfig{})

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(func(c *gin.Context) {
		c.Set("workspace", testWorkspace)
		c.Next()
	})

	syncHandler := NewSyncHandler(registry, client, o.presigner, syncCfg)
	viewHandler := NewViewHandler(registry)
	analysisHandler := NewAnalysisHandler(registry)
	documentHandler := NewDocumentHandler(client)
	ledgerHandler := NewLedgerHandler(client)
	reportHandler := NewReportHandler(client, true)

	router.POST("/api/sync/upload", syncHandler.Upload)
	router.POST("/api/sync/batch", syncHandler.Batch)
	router.GET("/api/sync/state", syncHandler.State)
	router.PUT("/api/sync/smart-parsing", syncHandler.SetSmartParsing)
	router.GET("/api/sync/session/status", syncHandler.SessionStatus)
	router.POST("/api/sync/generate", syncHandler.Generate)
	router.GET("/api/sync/statement", syncHandler.Statement)
	router.POST("/api/sync/reset", syncHandler.Reset)
	router.GET("/api/sync/template", syncHandler.Template)
	router.GET("/api/sync/template.xlsx", syncHandler.TemplateWorkbook)
	router.GET("/api/sync/archive/:category", syncHandler.ArchiveURL)
	router.GET("/api/view/stream", viewHandler.Stream)
	router.GET("/api/view/:slot", viewHandler.Get)
	router.POST("/api/analysis/monthly", analysisHandler.Monthly)
	router.POST("/api/analysis/simulation", analysisHandler.Simulation)
	router.GET("/api/analysis/sensitivity", analysisHandler.Sensitivity)
	router.GET("/api/documents", documentHandler.List)
	router.GET("/api/documents/:id", documentHandler.Get)
	router.GET("/api/receivables", ledgerHandler.Receivables)
	router.GET("/api/receivables/summary", ledgerHandler.ReceivableSummary)
	router.GET("/api/receivables/aging", ledgerHandler.ReceivableAging)
	router.GET("/api/payables", ledgerHandler.Payables)
	router.GET("/api/payables/summary", ledgerHandler.PayableSummary)
	router.GET("/api/reports/preview", reportHandler.Preview)

	return &testEnv{backend: mock, server: server, registry: registry, router: router}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, category, filename string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(multipartRequest(t, "/api/sync/upload", map[string]string{"category": category}, map[string]string{"file": filename}))
}

// multipartRequest builds a form with one small fake spreadsheet per file field.
func multipartRequest(t *testing.T, path string, fields, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	for field, filename := range files {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		part.Write([]byte("PK\x03\x04fake-sheet"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *apperr.AppError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("Failed to parse data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code apperr.Code) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w, nil)
	if env.Success || env.Error == nil {
		t.Fatalf("Expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("Expected code %s, got %s", code, env.Error.Code)
	}
	if env.Error.RequestID == "" {
		t.Error("Expected request id in error")
	}
}

type uploadResult struct {
	Upload  model.CategoryUpload   `json:"upload"`
	Uploads []model.CategoryUpload `json:"uploads"`
	State   SyncState              `json:"state"`
}
