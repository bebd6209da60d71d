package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

// TranslateStatement converts a generated income statement into account
// records for a single period. A non-empty per-category revenue split
// replaces the export/domestic pair. Amounts are copied as returned.
func TranslateStatement(is model.IncomeStatement, period string) []model.AccountItem {
	item := func(classification, account string, amount decimal.Decimal) model.AccountItem {
		return model.AccountItem{
			Classification: classification,
			Account:        account,
			Amounts:        map[string]decimal.Decimal{period: amount},
		}
	}

	var items []model.AccountItem
	if len(is.Revenue.ByCategory) > 0 {
		names := make([]string, 0, len(is.Revenue.ByCategory))
		for name := range is.Revenue.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			items = append(items, item(model.ClassRevenue, name+"매출", is.Revenue.ByCategory[name]))
		}
	} else {
		items = append(items,
			item(model.ClassRevenue, "수출매출", is.Revenue.Export),
			item(model.ClassRevenue, "내수매출", is.Revenue.Domestic),
		)
	}

	cogs := is.CostOfGoodsSold.Breakdown
	sga := is.SellingAdminExpenses.Breakdown
	items = append(items,
		item(model.ClassCOGS, "원재료비", cogs.RawMaterials),
		item(model.ClassCOGS, "직접노무비", cogs.DirectLabor),
		item(model.ClassCOGS, "제조경비", cogs.ManufacturingOverhead),
		item(model.ClassCOGS, "재고자산조정", cogs.InventoryAdjustment),
		item(model.ClassSGA, "판매관리비", sga.SGExpenses),
		item(model.ClassSGA, "간접노무비", sga.IndirectLabor),
	)
	return items
}
