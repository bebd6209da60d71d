package model

import (
	"time"
)

// UploadStatus is the lifecycle state of a category upload.
type UploadStatus string

const (
	StatusUploading UploadStatus = "uploading"
	StatusSuccess   UploadStatus = "success"
	StatusError     UploadStatus = "error"
)

// PreviewRow is one opaque row of the server-side preview.
type PreviewRow map[string]any

// CategoryUpload is the record kept for the latest file of one category.
type CategoryUpload struct {
	Category    Category          `json:"category"`
	Filename    string            `json:"filename"`
	Status      UploadStatus      `json:"status"`
	Rows        int               `json:"rows"`
	Columns     []string          `json:"columns,omitempty"`
	Preview     []PreviewRow      `json:"preview,omitempty"`
	SmartParse  *SmartParseResult `json:"smart_parse,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	ArchiveKey  string            `json:"archive_key,omitempty"`
	ErrorMsg    string            `json:"error_msg,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// Succeeded reports whether the record finished successfully.
func (u *CategoryUpload) Succeeded() bool {
	return u != nil && u.Status == StatusSuccess
}

// UploadResponse is the backend's answer to a category upload.
type UploadResponse struct {
	Success         bool         `json:"success"`
	Error           string       `json:"error,omitempty"`
	SessionID       string       `json:"session_id"`
	DataType        Category     `json:"data_type"`
	FileName        string       `json:"file_name"`
	Rows            int          `json:"rows"`
	Columns         []string     `json:"columns"`
	Preview         []PreviewRow `json:"preview"`
	LoadedDataTypes []Category   `json:"loaded_data_types"`
	RemainingTypes  []Category   `json:"remaining_types"`
	FoundColumns    []string     `json:"found_columns,omitempty"`
}

// LoadedData describes one category the backend holds for a session.
type LoadedData struct {
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// SessionStatus is the backend view of an upload session.
type SessionStatus struct {
	SessionID          string                  `json:"session_id"`
	LoadedData         map[Category]LoadedData `json:"loaded_data"`
	MissingData        []Category              `json:"missing_data"`
	ReadyForProcessing bool                    `json:"ready_for_processing"`
	MinimumRequired    []Category              `json:"minimum_required"`
	CanGenerateBasic   bool                    `json:"can_generate_basic"`
}
