package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
)

func TestAnalysisSimulation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectCall     bool
	}{
		{
			name:           "valid change rates",
			body:           `{"냉연강판_변동률": 10, "노무비_변동률": -5}`,
			expectedStatus: http.StatusOK,
			expectCall:     true,
		},
		{
			name:           "labor outside range",
			body:           `{"노무비_변동률": 40}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			body:           `{"냉연강판_변동률": "ten"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(jsonRequest(http.MethodPost, "/api/analysis/simulation", tt.body))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			called := env.backend.calls().simulation > 0
			if called != tt.expectCall {
				t.Errorf("Backend called = %v, want %v", called, tt.expectCall)
			}
			_, stored := env.registry.Get(testWorkspace).View.CostSimulation()
			if stored != tt.expectCall {
				t.Errorf("Slot stored = %v, want %v", stored, tt.expectCall)
			}
		})
	}
}

func TestAnalysisSensitivityFailureKeepsSlot(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/analysis/sensitivity", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	env.backend.failSensitivity("데이터가 없습니다")
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/analysis/sensitivity", nil))
	expectError(t, w, http.StatusUnprocessableEntity, apperr.CodeBackend)

	result, ok := env.registry.Get(testWorkspace).View.Sensitivity()
	if !ok || result.Period != "2025년 01월" {
		t.Errorf("Expected earlier result kept, got %+v", result)
	}
}

func TestAnalysisMonthly(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(http.MethodPost, "/api/analysis/monthly", `{"base_month": "2025년 01월", "compare_month": "2025년 02월"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result model.MonthlyComparison
	decodeEnvelope(t, w, &result)
	if result.BaseMonth != "2025년 01월" || result.CompareMonth != "2025년 02월" {
		t.Errorf("Unexpected comparison %+v", result)
	}

	// No months at all falls back to the backend's single-period summary.
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/analysis/monthly", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	stored, ok := env.registry.Get(testWorkspace).View.MonthlyComparison()
	if !ok || len(stored.Raw) == 0 {
		t.Errorf("Expected single-period summary stored, got %+v", stored)
	}
}
