package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Revenue struct {
	Total      decimal.Decimal            `json:"total"`
	Export     decimal.Decimal            `json:"export"`
	Domestic   decimal.Decimal            `json:"domestic"`
	ByCategory map[string]decimal.Decimal `json:"by_category,omitempty"`
}

type COGSBreakdown struct {
	RawMaterials          decimal.Decimal `json:"raw_materials"`
	DirectLabor           decimal.Decimal `json:"direct_labor"`
	ManufacturingOverhead decimal.Decimal `json:"manufacturing_overhead"`
	InventoryAdjustment   decimal.Decimal `json:"inventory_adjustment"`
}

type CostOfGoodsSold struct {
	Total     decimal.Decimal `json:"total"`
	Breakdown COGSBreakdown   `json:"breakdown"`
}

type SGABreakdown struct {
	SGExpenses    decimal.Decimal `json:"sg_expenses"`
	IndirectLabor decimal.Decimal `json:"indirect_labor"`
}

type SellingAdminExpenses struct {
	Total     decimal.Decimal `json:"total"`
	Breakdown SGABreakdown    `json:"breakdown"`
}

type Ratios struct {
	CostRatio       decimal.Decimal `json:"cost_ratio"`
	GrossMargin     decimal.Decimal `json:"gross_margin"`
	OperatingMargin decimal.Decimal `json:"operating_margin"`
}

// IncomeStatement mirrors the backend statement; values are never recomputed here.
type IncomeStatement struct {
	Revenue              Revenue              `json:"revenue"`
	CostOfGoodsSold      CostOfGoodsSold      `json:"cost_of_goods_sold"`
	GrossProfit          decimal.Decimal      `json:"gross_profit"`
	SellingAdminExpenses SellingAdminExpenses `json:"selling_admin_expenses"`
	OperatingProfit      decimal.Decimal      `json:"operating_profit"`
	Ratios               Ratios               `json:"ratios"`
}

type KeyFinding struct {
	Category string   `json:"category"`
	Finding  string   `json:"finding"`
	Impact   string   `json:"impact"`
	Severity Severity `json:"severity"`
}

type Recommendation struct {
	Priority       Severity `json:"priority"`
	Action         string   `json:"action"`
	ExpectedImpact string   `json:"expected_impact"`
}

// AIAnalysis is the optional narrative attached by the backend. When the
// backend could not parse its own model output only RawResponse/ParseError
// or Error are set.
type AIAnalysis struct {
	Summary                 string            `json:"summary,omitempty"`
	KeyFindings             []KeyFinding      `json:"key_findings,omitempty"`
	CostAnalysis            map[string]string `json:"cost_analysis,omitempty"`
	ProfitabilityAssessment map[string]string `json:"profitability_assessment,omitempty"`
	Recommendations         []Recommendation  `json:"recommendations,omitempty"`
	RiskFactors             []string          `json:"risk_factors,omitempty"`
	Opportunities           []string          `json:"opportunities,omitempty"`
	RawResponse             string            `json:"raw_response,omitempty"`
	ParseError              string            `json:"parse_error,omitempty"`
	Error                   string            `json:"error,omitempty"`
}

// Usable reports whether the narrative carries structured content.
func (a *AIAnalysis) Usable() bool {
	return a != nil && a.Error == "" && a.ParseError == "" && a.Summary != ""
}

type DataSource struct {
	Type   Category `json:"type"`
	Rows   int      `json:"rows"`
	Status string   `json:"status"`
}

// GenerationResult is one generated statement with its commentary and diagnostics.
type GenerationResult struct {
	Period          string          `json:"period"`
	GeneratedAt     string          `json:"generated_at"`
	DataSources     []DataSource    `json:"data_sources,omitempty"`
	IncomeStatement IncomeStatement `json:"income_statement"`
	Details         map[string]any  `json:"details,omitempty"`
	AIAnalysis      *AIAnalysis     `json:"ai_analysis,omitempty"`
	Warnings        []string        `json:"warnings"`
	Errors          []string        `json:"errors"`
	SessionID       string          `json:"session_id,omitempty"`
	ReceivedAt      time.Time       `json:"received_at"`
}
