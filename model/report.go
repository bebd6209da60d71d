package model

import "github.com/shopspring/decimal"

// ReportSummary condenses the monthly figures shown on a report. Changes is
// nil when only one period is loaded.
type ReportSummary struct {
	Revenue         decimal.Decimal `json:"매출액"`
	OperatingProfit decimal.Decimal `json:"영업이익"`
	Changes         *struct {
		Revenue         decimal.Decimal `json:"매출액"`
		OperatingProfit decimal.Decimal `json:"영업이익"`
	} `json:"변동률"`
}

type ReportProductRow struct {
	ProductGroup string          `json:"제품군"`
	Revenue      decimal.Decimal `json:"매출액"`
	Margin       decimal.Decimal `json:"이익률"`
}

// ReportPreview is the content a generated report would contain.
type ReportPreview struct {
	Period           string             `json:"기간"`
	PeriodsAvailable []string           `json:"periods_available"`
	MonthlySummary   *ReportSummary     `json:"monthly_summary,omitempty"`
	ProductSummary   []ReportProductRow `json:"product_summary,omitempty"`
	AIComment        string             `json:"ai_comment,omitempty"`
	AICommentError   string             `json:"ai_comment_error,omitempty"`
}
