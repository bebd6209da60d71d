package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

// UploadFile is one spreadsheet received from the browser. Content is held in
// memory because it is sent to more than one destination.
type UploadFile struct {
	Filename string
	Content  []byte
}

// UploadRequest is the payload of a category upload call.
type UploadRequest struct {
	File          UploadFile
	Category      model.Category
	SessionID     string
	ColumnMapping map[string]string
}

// MonthlyQuery selects the two periods to compare. Empty fields let the
// backend pick the two latest periods.
type MonthlyQuery struct {
	BaseMonth    string
	CompareMonth string
}

type DocumentFilter struct {
	DocType model.DocumentType
	Status  model.DocumentStatus
	Limit   int
}

// LedgerFilter narrows a receivable or payable listing. Party matches part of
// the customer or supplier name.
type LedgerFilter struct {
	Status model.LedgerStatus
	Party  string
	Limit  int
}

func (f LedgerFilter) query(partyKey string) url.Values {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.Party != "" {
		query.Set(partyKey, f.Party)
	}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}
	return query
}

// BackendClient talks to the external analysis service.
type BackendClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type statusEnvelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func NewBackendClient(cfg *config.BackendConfig) *BackendClient {
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &BackendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// SmartParse runs the column classifier and anomaly detector on a file.
func (c *BackendClient) SmartParse(ctx context.Context, file UploadFile, category model.Category) (*model.SmartParseResult, error) {
	body, contentType, err := multipartBody(file, map[string]string{"data_type": string(category)})
	if err != nil {
		return nil, err
	}

	var result model.SmartParseResult
	if err := c.do(ctx, http.MethodPost, "/api/smart-parser/analyze", nil, body, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadCategory uploads one category file into a session. An empty
// SessionID asks the backend to open a new session.
func (c *BackendClient) UploadCategory(ctx context.Context, req UploadRequest) (*model.UploadResponse, error) {
	fields := map[string]string{"data_type": string(req.Category)}
	if req.SessionID != "" {
		fields["session_id"] = req.SessionID
	}
	if len(req.ColumnMapping) > 0 {
		mapping, err := json.Marshal(req.ColumnMapping)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to encode column mapping")
		}
		fields["column_mapping"] = string(mapping)
	}

	body, contentType, err := multipartBody(req.File, fields)
	if err != nil {
		return nil, err
	}

	var resp model.UploadResponse
	err = c.do(ctx, http.MethodPost, "/api/erp-sync/upload", nil, body, contentType, &resp)
	if err != nil {
		if len(resp.FoundColumns) > 0 {
			if appErr := apperr.From(err); appErr.Code == apperr.CodeBackend {
				appErr.Details = "found columns: " + strings.Join(resp.FoundColumns, ", ")
			}
		}
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) SessionStatus(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	var status model.SessionStatus
	if err := c.do(ctx, http.MethodGet, "/api/erp-sync/session/"+url.PathEscape(sessionID)+"/status", nil, nil, "", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *BackendClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/erp-sync/session/"+url.PathEscape(sessionID), nil, nil, "", nil)
}

// GenerateStatement asks the backend to build the income statement for a session.
func (c *BackendClient) GenerateStatement(ctx context.Context, sessionID string, includeAI bool) (*model.GenerationResult, error) {
	query := url.Values{"include_ai": {strconv.FormatBool(includeAI)}}
	var resp struct {
		SessionID string                 `json:"session_id"`
		Result    model.GenerationResult `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/erp-sync/session/"+url.PathEscape(sessionID)+"/generate", query, nil, "", &resp); err != nil {
		return nil, err
	}
	resp.Result.SessionID = sessionID
	return &resp.Result, nil
}

func (c *BackendClient) TemplateInfo(ctx context.Context) (*model.TemplateInfo, error) {
	var info model.TemplateInfo
	if err := c.do(ctx, http.MethodGet, "/api/erp-sync/template-info", nil, nil, "", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// MonthlyComparison fetches the month-over-month analysis. With only one
// period loaded the backend answers with a free-form summary kept in Raw.
func (c *BackendClient) MonthlyComparison(ctx context.Context, q MonthlyQuery, includeAI bool) (*model.MonthlyComparison, error) {
	query := url.Values{"include_ai": {strconv.FormatBool(includeAI)}}
	if q.BaseMonth != "" {
		query.Set("기준월", q.BaseMonth)
	}
	if q.CompareMonth != "" {
		query.Set("비교월", q.CompareMonth)
	}

	raw, err := c.data(ctx, http.MethodPost, "/api/analysis/monthly", query, nil, "")
	if err != nil {
		return nil, err
	}
	var result model.MonthlyComparison
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperr.Transport(fmt.Errorf("decode monthly comparison: %w", err))
	}
	if result.BaseMonth == "" {
		result.Raw = raw
	}
	return &result, nil
}

func (c *BackendClient) ProductCost(ctx context.Context, period string, includeAI bool) (*model.ProductCostAnalysis, error) {
	query := periodQuery(period)
	query.Set("include_ai", strconv.FormatBool(includeAI))

	var result model.ProductCostAnalysis
	if err := c.dataInto(ctx, http.MethodPost, "/api/analysis/product-cost", query, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BackendClient) SimulateCost(ctx context.Context, input model.CostSimulationInput, period string, includeAI bool) (*model.CostSimulationResult, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to encode simulation input")
	}
	query := periodQuery(period)
	query.Set("include_ai", strconv.FormatBool(includeAI))

	var result model.CostSimulationResult
	if err := c.dataInto(ctx, http.MethodPost, "/api/simulation/cost", query, bytes.NewReader(payload), "application/json", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BackendClient) Sensitivity(ctx context.Context, period string) (*model.SensitivityResult, error) {
	var result model.SensitivityResult
	if err := c.dataInto(ctx, http.MethodGet, "/api/simulation/sensitivity", periodQuery(period), nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BackendClient) ListDocuments(ctx context.Context, f DocumentFilter) ([]model.TradeDocument, error) {
	query := url.Values{}
	if f.DocType != "" {
		query.Set("doc_type", string(f.DocType))
	}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}

	var docs []model.TradeDocument
	if err := c.dataInto(ctx, http.MethodGet, "/api/documents/list", query, nil, "", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *BackendClient) GetDocument(ctx context.Context, fileID string) (*model.TradeDocument, error) {
	var doc model.TradeDocument
	if err := c.dataInto(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(fileID), nil, nil, "", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *BackendClient) ListReceivables(ctx context.Context, f LedgerFilter) (*model.ReceivablePage, error) {
	var env struct {
		Data  []model.Receivable `json:"data"`
		Total int                `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/receivables/list", f.query("customer"), nil, "", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []model.Receivable{}
	}
	return &model.ReceivablePage{Items: env.Data, Total: env.Total}, nil
}

func (c *BackendClient) ReceivableSummary(ctx context.Context) (*model.ReceivableSummary, error) {
	var summary model.ReceivableSummary
	if err := c.dataInto(ctx, http.MethodGet, "/api/receivables/summary", nil, nil, "", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ReceivableAging returns open receivables bucketed by customer.
func (c *BackendClient) ReceivableAging(ctx context.Context) ([]model.CustomerAging, error) {
	var aging []model.CustomerAging
	if err := c.dataInto(ctx, http.MethodGet, "/api/receivables/aging", nil, nil, "", &aging); err != nil {
		return nil, err
	}
	return aging, nil
}

// ListPayables returns supplier invoices ordered by due date.
func (c *BackendClient) ListPayables(ctx context.Context, f LedgerFilter) (*model.PayablePage, error) {
	var env struct {
		Data  []model.Payable `json:"data"`
		Total int             `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/receivables/payables/list", f.query("supplier"), nil, "", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []model.Payable{}
	}
	return &model.PayablePage{Items: env.Data, Total: env.Total}, nil
}

func (c *BackendClient) PayableSummary(ctx context.Context) (*model.PayableSummary, error) {
	var summary model.PayableSummary
	if err := c.dataInto(ctx, http.MethodGet, "/api/receivables/payables/summary", nil, nil, "", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ReportPreview returns what a report for period would contain. An empty
// period selects the latest loaded one.
func (c *BackendClient) ReportPreview(ctx context.Context, period string, includeAI bool) (*model.ReportPreview, error) {
	query := periodQuery(period)
	query.Set("include_ai", strconv.FormatBool(includeAI))

	var preview model.ReportPreview
	if err := c.dataInto(ctx, http.MethodGet, "/api/reports/preview", query, nil, "", &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

func periodQuery(period string) url.Values {
	query := url.Values{}
	if period != "" {
		query.Set("기간", period)
	}
	return query
}

// dataInto unwraps the {success, data, error} envelope into out.
func (c *BackendClient) dataInto(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	raw, err := c.data(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Transport(fmt.Errorf("decode %s data: %w", path, err))
	}
	return nil
}

func (c *BackendClient) data(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	var env dataEnvelope
	if err := c.do(ctx, method, path, query, body, contentType, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, apperr.Transport(fmt.Errorf("%s returned no data", path))
	}
	return env.Data, nil
}

// do sends one request and decodes the JSON answer into out. Unreachable
// hosts and undecodable bodies become transport errors; an explicit failure
// reported by the backend becomes a backend error carrying its reason.
func (c *BackendClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Transport(fmt.Errorf("rate limiter: %w", err))
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Transport(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transport(fmt.Errorf("read %s response: %w", path, err))
	}

	logger.Debug(ctx, "backend response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody))

	var env statusEnvelope
	envErr := json.Unmarshal(respBody, &env)
	if envErr == nil {
		if reason := env.reason(); reason != "" && (resp.StatusCode >= 400 || (env.Success != nil && !*env.Success)) {
			if out != nil {
				// Failure bodies may still carry diagnostics such as found_columns.
				_ = json.Unmarshal(respBody, out)
			}
			return apperr.Backend(reason)
		}
	}
	if resp.StatusCode >= 400 {
		return apperr.Transport(fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}
	if env.Success != nil && !*env.Success {
		return apperr.Backend("요청 처리에 실패했습니다.")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperr.Transport(fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

// reason extracts the failure text from error, message, or a FastAPI detail
// which is either a string or a list of validation objects.
func (e statusEnvelope) reason() string {
	if e.Error != "" {
		return e.Error
	}
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(e.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if e.Success != nil && !*e.Success {
		return e.Message
	}
	return ""
}

func multipartBody(file UploadFile, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Filename)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.CodeInternal, "failed to build upload body")
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", apperr.Wrap(err, apperr.CodeInternal, "failed to build upload body")
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", apperr.Wrap(err, apperr.CodeInternal, "failed to build upload body")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", apperr.Wrap(err, apperr.CodeInternal, "failed to build upload body")
	}
	return &buf, w.FormDataContentType(), nil
}
