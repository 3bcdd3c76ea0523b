package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/xuri/excelize/v2"
)

// installmentColumn maps one spreadsheet column to an installment field.
type installmentColumn struct {
	Header string
	Value  func(i models.Installment) any
}

var installmentColumns = []installmentColumn{
	{Header: "ID", Value: func(i models.Installment) any { return i.ID }},
	{Header: "Student", Value: func(i models.Installment) any { return i.StudentID }},
	{Header: "Period", Value: func(i models.Installment) any { return fmt.Sprintf("%02d/%d", i.PeriodMonth, i.PeriodYear) }},
	{Header: "Base", Value: func(i models.Installment) any { return centsToUnits(i.BaseCents) }},
	{Header: "Discount", Value: func(i models.Installment) any { return centsToUnits(i.DiscountCents) }},
	{Header: "Fine", Value: func(i models.Installment) any { return centsToUnits(i.FineCents) }},
	{Header: "Amount due", Value: func(i models.Installment) any { return centsToUnits(i.AmountDueCents()) }},
	{Header: "Paid", Value: func(i models.Installment) any { return centsToUnits(i.TotalPaidCents()) }},
	{Header: "Due date", Value: func(i models.Installment) any { return i.DueDate.Format("2006-01-02") }},
	{Header: "Status", Value: func(i models.Installment) any { return i.Status }},
}

// PeriodReport renders the installments of one billing period as an XLSX
// workbook, ready to be served as a download.
func PeriodReport(installments []models.Installment, month, year int) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	sheet := "Installments"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Installments %02d/%d", month, year),
		Created: time.Now().Format(time.RFC3339),
	})

	for colIdx, col := range installmentColumns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	rowIdx := 2
	for _, installment := range installments {
		for colIdx, col := range installmentColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, col.Value(installment))
		}
		rowIdx++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	fileName := fmt.Sprintf("installments_%d_%02d.xlsx", year, month)
	return buf, fileName, nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
