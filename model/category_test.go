package model

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"sales", CategorySales, false},
		{" payroll ", CategoryPayroll, false},
		{"sg_expenses", CategorySGAExpenses, false},
		{"Sales", "", true},
		{"", "", true},
		{"assets", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoriesHaveLabels(t *testing.T) {
	if len(Categories) != 6 {
		t.Fatalf("Expected 6 categories, got %d", len(Categories))
	}
	for _, c := range Categories {
		if c.Label() == "" {
			t.Errorf("Category %s has no label", c)
		}
	}
	if CategorySales.Label() != "매출전표" {
		t.Errorf("Unexpected sales label %q", CategorySales.Label())
	}
}

func TestSmartParsable(t *testing.T) {
	want := map[Category]bool{
		CategorySales:       true,
		CategoryPurchases:   true,
		CategoryPayroll:     true,
		CategoryMfgExpenses: false,
		CategoryInventory:   false,
		CategorySGAExpenses: false,
	}
	for c, w := range want {
		if c.SmartParsable() != w {
			t.Errorf("%s.SmartParsable() = %v, want %v", c, !w, w)
		}
	}
}

func TestIsSpreadsheet(t *testing.T) {
	tests := map[string]bool{
		"sales.xlsx":       true,
		"SALES.XLSX":       true,
		"legacy.xls":       true,
		"report.csv":       false,
		"noext":            false,
		"archive.xlsx.zip": false,
		"매출전표_2025.xlsx":   true,
	}
	for name, want := range tests {
		if got := IsSpreadsheet(name); got != want {
			t.Errorf("IsSpreadsheet(%q) = %v, want %v", name, got, want)
		}
	}
}
