package service

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

func sampleTemplateInfo() *model.TemplateInfo {
	return &model.TemplateInfo{
		Templates: map[model.Category]model.CategoryTemplate{
			model.CategorySales: {
				Name:            "매출전표",
				RequiredColumns: []string{"전표일자", "거래처명", "원화환산액"},
				OptionalColumns: []string{"비고"},
				Example:         map[string]any{"전표일자": "2025-01-15", "원화환산액": 115000000},
			},
			model.CategoryPayroll: {
				Name:            "급여대장",
				RequiredColumns: []string{"부서", "원가구분"},
				Note:            "원가구분: '직접노무비' 또는 '간접노무비'로 구분",
				Example:         map[string]any{"부서": "생산1과"},
			},
		},
		MinimumRequired: []model.Category{model.CategorySales, model.CategoryPurchases},
	}
}

func TestBuildTemplateWorkbook(t *testing.T) {
	f, err := BuildTemplateWorkbook(sampleTemplateInfo())
	if err != nil {
		t.Fatalf("BuildTemplateWorkbook failed: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}

	sheets := wb.GetSheetList()
	want := []string{"작성안내", "매출전표", "급여대장"}
	if len(sheets) != len(want) {
		t.Fatalf("Expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("Expected sheet %q at %d, got %q", want[i], i, sheets[i])
		}
	}

	rows, err := wb.GetRows("매출전표")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header and example rows, got %d", len(rows))
	}
	if !equalStrings(rows[0], []string{"전표일자", "거래처명", "원화환산액", "비고"}) {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][0] != "2025-01-15" || rows[1][1] != "" || rows[1][2] != "115000000" {
		t.Errorf("Unexpected example row %v", rows[1])
	}

	guide, _ := wb.GetRows("작성안내")
	if len(guide) != 3 {
		t.Fatalf("Expected guide header plus 2 rows, got %d", len(guide))
	}
	if guide[1][1] != "sales" || guide[1][4] != "필수 업로드" {
		t.Errorf("Unexpected sales guide row %v", guide[1])
	}
	if guide[2][4] != "원가구분: '직접노무비' 또는 '간접노무비'로 구분" {
		t.Errorf("Unexpected payroll note %q", guide[2][4])
	}
}

func TestBuildTemplateWorkbookEmpty(t *testing.T) {
	f, err := BuildTemplateWorkbook(&model.TemplateInfo{})
	if err != nil {
		t.Fatalf("BuildTemplateWorkbook failed: %v", err)
	}
	if got := f.GetSheetList(); len(got) != 1 || got[0] != "작성안내" {
		t.Errorf("Expected only the guide sheet, got %v", got)
	}
}
