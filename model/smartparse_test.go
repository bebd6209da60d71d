package model

import (
	"encoding/json"
	"testing"
)

func TestSmartParseDecode(t *testing.T) {
	raw := `{
		"original_columns": ["일자", "거래처", "금액"],
		"mapped_columns": {"일자": "date", "거래처": "customer"},
		"mapping_confidence": {"average": 0.92, "details": [{"original": "일자", "mapped": "date", "confidence": 1.0, "method": "exact_match"}]},
		"anomalies": [
			{"type": "negative_value", "column": "금액", "severity": "high", "message": "음수 금액", "rows": [3, 7]},
			{"type": "missing", "column": "거래처", "severity": "low", "message": "빈 값"}
		],
		"warnings": [],
		"data_quality_score": {"score": 81.5, "grade": "B", "grade_text": "양호", "details": [], "mapping_rate": 66.7, "anomaly_count": {"high": 1, "medium": 0, "low": 1}},
		"row_count": 120
	}`
	var r SmartParseResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.RowCount != 120 {
		t.Errorf("Expected row_count 120, got %d", r.RowCount)
	}
	if r.DataQualityScore.AnomalyCount.Total() != 2 {
		t.Errorf("Expected 2 anomalies, got %d", r.DataQualityScore.AnomalyCount.Total())
	}
	if high := r.AnomaliesBySeverity(SeverityHigh); len(high) != 1 || high[0].Rows[1] != 7 {
		t.Errorf("Unexpected high anomalies: %+v", high)
	}
	if m := r.ColumnMapping(); m["거래처"] != "customer" {
		t.Errorf("Unexpected column mapping: %v", m)
	}
}

func TestColumnMappingEmpty(t *testing.T) {
	var nilResult *SmartParseResult
	if nilResult.ColumnMapping() != nil {
		t.Error("Expected nil mapping for nil result")
	}
	if (&SmartParseResult{MappedColumns: map[string]string{}}).ColumnMapping() != nil {
		t.Error("Expected nil mapping for empty suggestions")
	}
	if nilResult.AnomaliesBySeverity(SeverityLow) != nil {
		t.Error("Expected no anomalies for nil result")
	}
}
