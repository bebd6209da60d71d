package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account classifications used by every analysis screen.
const (
	ClassRevenue = "매출액"
	ClassCOGS    = "매출원가"
	ClassSGA     = "판매관리비"
)

// AccountItem is one account line with an amount per period label.
type AccountItem struct {
	Classification string                     `json:"분류"`
	Account        string                     `json:"계정과목"`
	Amounts        map[string]decimal.Decimal `json:"금액"`
}

// ProfitLossData is the multi-period dataset shared across screens.
type ProfitLossData struct {
	Periods []string      `json:"periods"`
	Items   []AccountItem `json:"items"`
}

// Find returns the first item with the given classification and account.
func (p *ProfitLossData) Find(classification, account string) (AccountItem, bool) {
	if p == nil {
		return AccountItem{}, false
	}
	for _, item := range p.Items {
		if item.Classification == classification && item.Account == account {
			return item, true
		}
	}
	return AccountItem{}, false
}

// ByClassification returns the items of one classification in order.
func (p *ProfitLossData) ByClassification(classification string) []AccountItem {
	if p == nil {
		return nil
	}
	var out []AccountItem
	for _, item := range p.Items {
		if item.Classification == classification {
			out = append(out, item)
		}
	}
	return out
}

// PeriodLabel formats a month the way period keys are written, e.g. "2025년 01월".
func PeriodLabel(t time.Time) string {
	return fmt.Sprintf("%d년 %02d월", t.Year(), int(t.Month()))
}
