package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TemplateSource interface {
	TemplateInfo(ctx context.Context) (*model.TemplateInfo, error)
}

// Presigner issues download links for archived uploads.
type Presigner interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

type SyncHandler struct {
	registry       *service.Registry
	templates      TemplateSource
	presigner      Presigner // nil when archiving is off
	maxUploadBytes int64
}

func NewSyncHandler(registry *service.Registry, templates TemplateSource, presigner Presigner, cfg *config.SyncConfig) *SyncHandler {
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 32
	}
	return &SyncHandler{
		registry:       registry,
		templates:      templates,
		presigner:      presigner,
		maxUploadBytes: int64(maxMB) << 20,
	}
}

// SyncState is what the upload screen needs to render itself.
type SyncState struct {
	Records      []model.CategoryUpload `json:"records"`
	SessionID    string                 `json:"session_id,omitempty"`
	CanGenerate  bool                   `json:"can_generate"`
	SmartParsing bool                   `json:"smart_parsing"`
}

func (h *SyncHandler) workflow(c *gin.Context) *service.Workflow {
	return h.registry.Get(middleware.GetWorkspace(c))
}

// detached keeps the request's values but not its cancellation. Uploads and
// generation change workflow state and must finish even if the client leaves;
// the backend client timeout still bounds them.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func stateOf(wf *service.Workflow) SyncState {
	return SyncState{
		Records:      wf.Coordinator.Records(),
		SessionID:    wf.Coordinator.SessionID(),
		CanGenerate:  wf.Coordinator.CanGenerate(),
		SmartParsing: wf.Coordinator.SmartParsing(),
	}
}

// parseUpload caps the body at limit bytes and parses the multipart form.
func (h *SyncHandler) parseUpload(c *gin.Context, limit int64) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation(fmt.Sprintf("파일 크기는 %dMB를 넘을 수 없습니다.", h.maxUploadBytes>>20))
		}
		return nil, apperr.Validation("multipart/form-data 형식의 요청이 필요합니다.")
	}
	return c.Request.MultipartForm, nil
}

func readUpload(fh *multipart.FileHeader) (service.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, apperr.Wrap(err, apperr.CodeInternal, "업로드한 파일을 열 수 없습니다.")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.UploadFile{}, apperr.Wrap(err, apperr.CodeInternal, "업로드한 파일을 읽을 수 없습니다.")
	}
	return service.UploadFile{Filename: fh.Filename, Content: content}, nil
}

// Upload submits one category file. A failed upload is still a 200: the
// failure is part of the returned record.
func (h *SyncHandler) Upload(c *gin.Context) {
	form, err := h.parseUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	category, err := model.ParseCategory(c.Request.FormValue("category"))
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		respondError(c, apperr.Validation("업로드할 파일이 없습니다."))
		return
	}
	file, err := readUpload(headers[0])
	if err != nil {
		respondError(c, err)
		return
	}

	wf := h.workflow(c)
	record, err := wf.Coordinator.SubmitFile(detached(c), category, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"upload": record,
		"state":  stateOf(wf),
	})
}

// Batch submits every file field named after a category at once.
func (h *SyncHandler) Batch(c *gin.Context) {
	form, err := h.parseUpload(c, h.maxUploadBytes*int64(len(model.Categories)))
	if err != nil {
		respondError(c, err)
		return
	}

	files := make(map[model.Category]service.UploadFile, len(form.File))
	for field, headers := range form.File {
		category, err := model.ParseCategory(field)
		if err != nil {
			respondError(c, apperr.Validation(err.Error()))
			return
		}
		if len(headers) == 0 {
			continue
		}
		file, err := readUpload(headers[0])
		if err != nil {
			respondError(c, err)
			return
		}
		files[category] = file
	}
	if len(files) == 0 {
		respondError(c, apperr.Validation("업로드할 파일이 없습니다."))
		return
	}

	wf := h.workflow(c)
	records, err := wf.Coordinator.SubmitBatch(detached(c), files)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"uploads": records,
		"state":   stateOf(wf),
	})
}

func (h *SyncHandler) State(c *gin.Context) {
	respondOK(c, stateOf(h.workflow(c)))
}

type smartParsingRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *SyncHandler) SetSmartParsing(c *gin.Context) {
	var req smartParsingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("enabled 값이 필요합니다."))
		return
	}

	wf := h.workflow(c)
	wf.Coordinator.SetSmartParsing(*req.Enabled)
	logger.Info(c.Request.Context(), "smart parsing toggled", "enabled", *req.Enabled)
	respondOK(c, stateOf(wf))
}

func (h *SyncHandler) SessionStatus(c *gin.Context) {
	status, err := h.workflow(c).Coordinator.RemoteStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, status)
}

// Generate builds the income statement. It is refused until sales data
// has been uploaded successfully.
func (h *SyncHandler) Generate(c *gin.Context) {
	wf := h.workflow(c)
	if !wf.Coordinator.CanGenerate() {
		respondError(c, apperr.Precondition("매출전표 업로드 후 손익계산서를 생성할 수 있습니다."))
		return
	}

	result, err := wf.Assembler.Generate(detached(c), wf.Coordinator.SessionID())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *SyncHandler) Statement(c *gin.Context) {
	result, ok := h.workflow(c).Assembler.Latest()
	if !ok {
		respondError(c, apperr.NotFound("생성된 손익계산서가 없습니다."))
		return
	}
	respondOK(c, result)
}

func (h *SyncHandler) Reset(c *gin.Context) {
	wf := h.workflow(c)
	wf.Reset(c.Request.Context())
	logger.Info(c.Request.Context(), "workflow reset", "workflow_id", wf.ID)
	respondOK(c, stateOf(wf))
}

func (h *SyncHandler) Template(c *gin.Context) {
	info, err := h.templates.TemplateInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

// TemplateWorkbook renders the template description as a downloadable .xlsx.
func (h *SyncHandler) TemplateWorkbook(c *gin.Context) {
	info, err := h.templates.TemplateInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := service.BuildTemplateWorkbook(info)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.CodeInternal, "템플릿 파일을 만들 수 없습니다."))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.CodeInternal, "템플릿 파일을 만들 수 없습니다."))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="erp_upload_template.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ArchiveURL returns a temporary link to the archived copy of a category's
// latest upload.
func (h *SyncHandler) ArchiveURL(c *gin.Context) {
	if h.presigner == nil {
		respondError(c, apperr.NotFound("원본 파일 보관 기능이 꺼져 있습니다."))
		return
	}
	category, err := model.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	record, ok := h.workflow(c).Coordinator.Record(category)
	if !ok || record.ArchiveKey == "" {
		respondError(c, apperr.NotFound(category.Label() + "의 보관된 원본 파일이 없습니다."))
		return
	}

	url, err := h.presigner.PresignedURL(c.Request.Context(), record.ArchiveKey)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.CodeInternal, "다운로드 링크를 만들 수 없습니다."))
		return
	}
	respondOK(c, gin.H{
		"category": category,
		"filename": record.Filename,
		"url":      url,
	})
}
