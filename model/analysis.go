package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PeriodSummary is the condensed P&L of one period.
type PeriodSummary struct {
	Revenue            decimal.Decimal `json:"매출액"`
	COGS               decimal.Decimal `json:"매출원가"`
	GrossProfit        decimal.Decimal `json:"매출총이익"`
	SGA                decimal.Decimal `json:"판매관리비"`
	OperatingProfit    decimal.Decimal `json:"영업이익"`
	NonOperatingIncome decimal.Decimal `json:"영업외수익"`
	NonOperatingCost   decimal.Decimal `json:"영업외비용"`
	OrdinaryProfit     decimal.Decimal `json:"경상이익"`
}

type ChangeDetail struct {
	Classification string          `json:"분류"`
	Account        string          `json:"계정과목"`
	BaseAmount     decimal.Decimal `json:"기준금액"`
	CompareAmount  decimal.Decimal `json:"비교금액"`
	Change         decimal.Decimal `json:"변동액"`
	ChangeRate     decimal.Decimal `json:"변동률"`
}

// MonthlyComparison is the month-over-month analysis. A single-period dataset
// produces a free-form payload that is kept in Raw.
type MonthlyComparison struct {
	BaseMonth      string                                `json:"기준월,omitempty"`
	CompareMonth   string                                `json:"비교월,omitempty"`
	BaseSummary    *PeriodSummary                        `json:"기준_요약,omitempty"`
	CompareSummary *PeriodSummary                        `json:"비교_요약,omitempty"`
	ChangeSummary  map[string]map[string]decimal.Decimal `json:"변동_요약,omitempty"`
	MajorChanges   []ChangeDetail                        `json:"주요변동항목,omitempty"`
	AIComment      string                                `json:"ai_comment,omitempty"`
	Raw            json.RawMessage                       `json:"raw,omitempty"`
}

type ProductCost struct {
	ProductGroup      string          `json:"제품군"`
	Revenue           decimal.Decimal `json:"매출액"`
	DirectCost        decimal.Decimal `json:"직접원가"`
	AllocatedOverhead decimal.Decimal `json:"간접원가배부"`
	TotalCost         decimal.Decimal `json:"총원가"`
	GrossProfit       decimal.Decimal `json:"매출총이익"`
	GrossMargin       decimal.Decimal `json:"매출총이익률"`
}

type ProductCostAnalysis struct {
	Period    string                     `json:"기간"`
	Products  []ProductCost              `json:"제품별_분석"`
	CostMix   map[string]decimal.Decimal `json:"원가구성비"`
	AIComment string                     `json:"ai_comment,omitempty"`
}

// CostSimulationInput holds the percentage change per cost driver.
type CostSimulationInput struct {
	ColdRolledSteel float64 `json:"냉연강판_변동률"`
	Paint           float64 `json:"도료_변동률"`
	Zinc            float64 `json:"아연_변동률"`
	Electricity     float64 `json:"전력비_변동률"`
	Gas             float64 `json:"가스비_변동률"`
	Labor           float64 `json:"노무비_변동률"`
}

// Validate enforces the accepted ranges: ±50% for materials and energy, ±30% for labor.
func (in CostSimulationInput) Validate() error {
	checks := []struct {
		name  string
		value float64
		limit float64
	}{
		{"냉연강판", in.ColdRolledSteel, 50},
		{"도료", in.Paint, 50},
		{"아연", in.Zinc, 50},
		{"전력비", in.Electricity, 50},
		{"가스비", in.Gas, 50},
		{"노무비", in.Labor, 30},
	}
	for _, c := range checks {
		if c.value < -c.limit || c.value > c.limit {
			return fmt.Errorf("%s 변동률 %.1f%%는 ±%.0f%% 범위를 벗어납니다", c.name, c.value, c.limit)
		}
	}
	return nil
}

type CostSimulationResult struct {
	BaseCOGS              decimal.Decimal            `json:"기준_매출원가"`
	ProjectedCOGS         decimal.Decimal            `json:"예상_매출원가"`
	BaseOperatingProfit   decimal.Decimal            `json:"기준_영업이익"`
	ProjectedOperating    decimal.Decimal            `json:"예상_영업이익"`
	OperatingProfitChange decimal.Decimal            `json:"영업이익_변동액"`
	OperatingProfitRate   decimal.Decimal            `json:"영업이익_변동률"`
	ImpactByCostItem      map[string]decimal.Decimal `json:"원가항목별_영향"`
	AIComment             string                     `json:"ai_comment,omitempty"`
}

type SensitivityItem struct {
	Item                  string          `json:"항목"`
	OperatingProfitImpact decimal.Decimal `json:"영업이익_영향도"`
}

type SensitivityResult struct {
	Period string            `json:"기간"`
	Items  []SensitivityItem `json:"sensitivity"`
}
