package services

import (
	"context"
	"fmt"
	"io"

	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/security/validation"
	"github.com/xuri/excelize/v2"
)

const (
	brandSheet   = "Marcas"
	channelSheet = "Canais"
)

var (
	brandHeaders   = []string{"Marca", "Faturado", "Devolvido", "Cutoff Inicial", "Cutoff Final", "Líquido"}
	channelHeaders = []string{"Canal", "Marca", "Faturado", "Devolvido", "Líquido"}
)

// ExportRevenue writes the net revenue report for the filter as an XLSX workbook.
func (s *dashboardServiceImpl) ExportRevenue(ctx context.Context, filter models.RevenueFilter, w io.Writer) error {
	result, err := s.NetRevenue(ctx, filter)
	if err != nil {
		return err
	}
	f, err := BuildRevenueWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write revenue workbook: %w", err)
	}
	return nil
}

// BuildRevenueWorkbook lays out the brand view with a totals row and the channel view.
func BuildRevenueWorkbook(result *models.NetRevenueResult) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", brandSheet)
	if _, err := f.NewSheet(channelSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", channelSheet, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		f.Close()
		return nil, err
	}

	writeHeader(f, brandSheet, brandHeaders, headerStyle)
	row := 2
	for _, b := range result.ByBrand {
		setRow(f, brandSheet, row, validation.SanitizeForFormulaInjection(b.Brand),
			b.GrossInvoiced, b.GrossReturned, b.CutoffInitial, b.CutoffFinal, b.Net)
		row++
	}
	setRow(f, brandSheet, row, "Total",
		result.Totals.GrossInvoiced, result.Totals.GrossReturned, "", "", result.Totals.Net)
	f.SetCellStyle(brandSheet, "B2", fmt.Sprintf("F%d", row), moneyStyle)
	f.SetColWidth(brandSheet, "A", "A", 24)
	f.SetColWidth(brandSheet, "B", "F", 16)

	writeHeader(f, channelSheet, channelHeaders, headerStyle)
	row = 2
	for _, c := range result.ByChannel {
		setRow(f, channelSheet, row, validation.SanitizeForFormulaInjection(c.Channel),
			validation.SanitizeForFormulaInjection(c.Brand), c.GrossInvoiced, c.GrossReturned, c.Net)
		row++
	}
	if row > 2 {
		f.SetCellStyle(channelSheet, "C2", fmt.Sprintf("E%d", row-1), moneyStyle)
	}
	f.SetColWidth(channelSheet, "A", "B", 24)
	f.SetColWidth(channelSheet, "C", "E", 16)

	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetRowStyle(sheet, 1, 1, style)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}
