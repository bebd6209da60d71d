package model

// Severity grades a detected anomaly.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// MappingDetail is one original→canonical column suggestion.
type MappingDetail struct {
	Original   string  `json:"original"`
	Mapped     string  `json:"mapped"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"` // exact_match, case_insensitive, ai_inference
}

type MappingConfidence struct {
	Average float64         `json:"average"`
	Details []MappingDetail `json:"details"`
}

type Anomaly struct {
	Type         string   `json:"type"`
	Column       string   `json:"column"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Rows         []int    `json:"rows,omitempty"`
	SampleValues []any    `json:"sample_values,omitempty"`
}

type AnomalyCount struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the number of anomalies across severities.
func (a AnomalyCount) Total() int {
	return a.High + a.Medium + a.Low
}

type QualityScore struct {
	Score        float64      `json:"score"`
	Grade        string       `json:"grade"`
	GradeText    string       `json:"grade_text"`
	Details      []string     `json:"details"`
	MappingRate  float64      `json:"mapping_rate"`
	AnomalyCount AnomalyCount `json:"anomaly_count"`
}

// SmartParseResult is the classifier output attached to an upload record.
// It is informational only and never blocks the upload.
type SmartParseResult struct {
	OriginalColumns   []string          `json:"original_columns"`
	MappedColumns     map[string]string `json:"mapped_columns"`
	MappingConfidence MappingConfidence `json:"mapping_confidence"`
	Anomalies         []Anomaly         `json:"anomalies"`
	Warnings          []string          `json:"warnings"`
	DataQualityScore  QualityScore      `json:"data_quality_score"`
	RowCount          int               `json:"row_count"`
	ParsedPreview     []PreviewRow      `json:"parsed_preview,omitempty"`
}

// ColumnMapping returns the mapping forwarded to the upload call, or nil when
// the classifier produced no suggestions.
func (r *SmartParseResult) ColumnMapping() map[string]string {
	if r == nil || len(r.MappedColumns) == 0 {
		return nil
	}
	return r.MappedColumns
}

// AnomaliesBySeverity filters the anomaly list.
func (r *SmartParseResult) AnomaliesBySeverity(s Severity) []Anomaly {
	if r == nil {
		return nil
	}
	var out []Anomaly
	for _, a := range r.Anomalies {
		if a.Severity == s {
			out = append(out, a)
		}
	}
	return out
}
