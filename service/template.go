package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

const guideSheet = "작성안내"

// BuildTemplateWorkbook lays out one sheet per category with the required
// columns first, then the optional ones, and the example row beneath.
func BuildTemplateWorkbook(info *model.TemplateInfo) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", guideSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#B91C1C"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FEE2E2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create required style: %w", err)
	}

	guide := [][]any{{"데이터 유형", "코드", "설명", "필수 컬럼", "비고"}}
	for _, category := range model.Categories {
		tpl, ok := info.Templates[category]
		if !ok {
			continue
		}
		guide = append(guide, []any{tpl.Name, string(category), tpl.Description, strings.Join(tpl.RequiredColumns, ", "), guideNote(tpl, category, info)})

		sheet := sheetName(tpl, category)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeTemplateSheet(f, sheet, tpl, headerStyle, requiredStyle); err != nil {
			return nil, err
		}
	}

	for i, row := range guide {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(guideSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write guide row %d: %w", i+1, err)
		}
	}
	if err := f.SetRowStyle(guideSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("style guide header: %w", err)
	}
	f.SetColWidth(guideSheet, "A", "B", 14)
	f.SetColWidth(guideSheet, "C", "C", 30)
	f.SetColWidth(guideSheet, "D", "E", 50)
	f.SetActiveSheet(0)

	return f, nil
}

func writeTemplateSheet(f *excelize.File, sheet string, tpl model.CategoryTemplate, headerStyle, requiredStyle int) error {
	columns := append(append([]string{}, tpl.RequiredColumns...), tpl.OptionalColumns...)
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
		if v, ok := tpl.Example[col]; ok {
			exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)
			if err := f.SetCellValue(sheet, exampleCell, v); err != nil {
				return fmt.Errorf("write example %s: %w", exampleCell, err)
			}
		}
	}
	if len(columns) == 0 {
		return nil
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if n := len(tpl.RequiredColumns); n > 0 {
		lastRequired, _ := excelize.ColumnNumberToName(n)
		if err := f.SetCellStyle(sheet, "A1", lastRequired+"1", requiredStyle); err != nil {
			return fmt.Errorf("style required header: %w", err)
		}
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func guideNote(tpl model.CategoryTemplate, category model.Category, info *model.TemplateInfo) string {
	var parts []string
	for _, c := range info.MinimumRequired {
		if c == category {
			parts = append(parts, "필수 업로드")
			break
		}
	}
	if tpl.Note != "" {
		parts = append(parts, tpl.Note)
	}
	if len(tpl.CommonAccounts) > 0 {
		parts = append(parts, "주요 계정: "+strings.Join(tpl.CommonAccounts, ", "))
	}
	return strings.Join(parts, " / ")
}

func sheetName(tpl model.CategoryTemplate, category model.Category) string {
	if tpl.Name != "" {
		return tpl.Name
	}
	return category.Label()
}
