package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category is one of the six fixed ERP data types a workflow accepts.
type Category string

const (
	CategorySales       Category = "sales"
	CategoryPurchases   Category = "purchases"
	CategoryPayroll     Category = "payroll"
	CategoryMfgExpenses Category = "mfg_expenses"
	CategoryInventory   Category = "inventory"
	CategorySGAExpenses Category = "sg_expenses"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySales,
	CategoryPurchases,
	CategoryPayroll,
	CategoryMfgExpenses,
	CategoryInventory,
	CategorySGAExpenses,
}

var categoryLabels = map[Category]string{
	CategorySales:       "매출전표",
	CategoryPurchases:   "매입전표",
	CategoryPayroll:     "급여대장",
	CategoryMfgExpenses: "제조경비",
	CategoryInventory:   "재고현황",
	CategorySGAExpenses: "판매관리비",
}

// SpreadsheetExtensions are the file extensions accepted for upload.
var SpreadsheetExtensions = []string{".xlsx", ".xls"}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("알 수 없는 데이터 유형입니다: %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the Korean document name used on screen.
func (c Category) Label() string {
	return categoryLabels[c]
}

// SmartParsable reports whether the pre-parse classifier supports the category.
func (c Category) SmartParsable() bool {
	switch c {
	case CategorySales, CategoryPurchases, CategoryPayroll:
		return true
	}
	return false
}

// IsSpreadsheet validates a filename by extension only.
func IsSpreadsheet(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range SpreadsheetExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
