package service

import (
	"errors"
	"fmt"
	"testing"

	"portfolio-web/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testCompanies() []models.CompanyRef {
	return []models.CompanyRef{
		{ID: 1, Name: "Acme Industries"},
		{ID: 2, Name: "Blue Harbor Shipping"},
		{ID: 3, Name: "Northwind Traders"},
	}
}

// buildWorkbook creates an in-memory workbook with the template layout:
// given sheet name, headers on row 5, data rows starting at row 6.
func buildWorkbook(t *testing.T, sheetName string, dataRows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	_, err := f.NewSheet(sheetName)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))

	headers := []string{"Date", "Company Name", "Type", "Quantity", "Price", "Fees", "Remarks", "Total"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s%d", getColumnName(i), templateHeaderRows)
		require.NoError(t, f.SetCellValue(sheetName, cell, header))
	}

	for rowIdx, rowData := range dataRows {
		row := templateHeaderRows + 1 + rowIdx
		for colIdx, value := range rowData {
			if value == nil {
				continue
			}
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			require.NoError(t, f.SetCellValue(sheetName, cell, value))
		}
	}

	return f
}

func TestParseWorkbookRejectsUnrecognizedTemplate(t *testing.T) {
	t.Parallel()

	// Right column layout, wrong sheet name.
	f := buildWorkbook(t, "Transactions", [][]interface{}{
		{"05/03/2024", "Acme Industries", "Buy", 100, 250.5, 25, ""},
	})

	svc := NewExcelService()
	_, err := svc.ParseWorkbook(f, testCompanies())
	require.ErrorIs(t, err, ErrUnrecognizedTemplate)
}

func TestParseWorkbookSheetNameIsCaseSensitive(t *testing.T) {
	t.Parallel()

	f := buildWorkbook(t, "stock transactions", [][]interface{}{
		{"05/03/2024", "Acme Industries", "Buy", 100, 250.5, 25, ""},
	})

	svc := NewExcelService()
	_, err := svc.ParseWorkbook(f, testCompanies())
	require.ErrorIs(t, err, ErrUnrecognizedTemplate)
}

func TestParseWorkbookEndToEnd(t *testing.T) {
	t.Parallel()

	f := buildWorkbook(t, templateSheetName, [][]interface{}{
		{"05/03/2024", "Example Company Ltd", "Buy", 100, 250.5, 25, "untouched example row"}, // row 6, skipped
		{"05/03/2024", "Acme Industries", "Buy", 100, 250.5, 25, "first"},                     // row 7
		{nil, nil, nil, nil, nil, nil, nil},                                                   // row 8, blank gap
		{45356, "Blue Harbor Shipping", "Sell", 50, 120, 0, "serial date"},                    // row 9
		{"06/03/2024", "No Such Company", "bought", "", 5, 0, ""},                             // row 10, three defects
		{"END OF TEMPLATE", nil, nil, nil, nil, nil, nil},                                     // row 11
		{"07/03/2024", "Acme Industries", "Buy", 10, 5, 0, "below the sentinel"},              // row 12, ignored
	})

	svc := NewExcelService()
	report, err := svc.ParseWorkbook(f, testCompanies())
	require.NoError(t, err)

	require.Equal(t, 3, report.TotalRows)
	require.Equal(t, 2, report.ValidCount)
	require.Equal(t, 1, report.ErrorCount)
	require.Len(t, report.ValidRows, 2)
	require.Len(t, report.RowErrors, 1)

	// Source rows survive skipped rows above them.
	first := report.ValidRows[0]
	require.Equal(t, 7, first.SourceRow)
	require.Equal(t, 1, first.Ordinal)
	require.Equal(t, 1, first.CompanyID)
	require.Equal(t, "Acme Industries", first.CompanyName)
	require.Equal(t, "2024-03-05", first.TradeDate.Format("2006-01-02"))
	require.Equal(t, "25050", first.Total.String())

	second := report.ValidRows[1]
	require.Equal(t, 9, second.SourceRow)
	require.Equal(t, 2, second.Ordinal)
	require.Equal(t, "2024-03-05", second.TradeDate.Format("2006-01-02"))

	bad := report.RowErrors[0]
	require.Equal(t, 10, bad.SourceRow)
	require.Contains(t, bad.Messages, `Company "No Such Company" not found in system`)
	require.Contains(t, bad.Messages, "Type must be exactly 'Buy' or 'Sell'")
	require.Contains(t, bad.Messages, "Invalid quantity")
}

func TestParseWorkbookEmptyDataRegion(t *testing.T) {
	t.Parallel()

	f := buildWorkbook(t, templateSheetName, [][]interface{}{
		{"05/03/2024", "Example Company Ltd", "Buy", 100, 250.5, 25, ""},
		{"END OF TEMPLATE"},
	})

	svc := NewExcelService()
	report, err := svc.ParseWorkbook(f, testCompanies())
	require.NoError(t, err)
	require.Equal(t, 0, report.TotalRows)
	require.Empty(t, report.ValidRows)
	require.Empty(t, report.RowErrors)
}

func TestParseWorkbookSentinelIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := buildWorkbook(t, templateSheetName, [][]interface{}{
		{"05/03/2024", "Acme Industries", "Buy", 100, 250.5, 25, ""},
		{"End Of Template"},
		{"06/03/2024", "Acme Industries", "Buy", 1, 1, 0, ""},
	})

	svc := NewExcelService()
	report, err := svc.ParseWorkbook(f, testCompanies())
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalRows)
}

func capWorkbook(t *testing.T, dataRowCount int) *excelize.File {
	t.Helper()
	rows := make([][]interface{}, 0, dataRowCount+1)
	for i := 0; i < dataRowCount; i++ {
		rows = append(rows, []interface{}{"05/03/2024", "Acme Industries", "Buy", 1, 1, 0, ""})
	}
	rows = append(rows, []interface{}{"END OF TEMPLATE"})
	return buildWorkbook(t, templateSheetName, rows)
}

func TestParseWorkbookAtRowCap(t *testing.T) {
	t.Parallel()

	svc := NewExcelService()
	report, err := svc.ParseWorkbook(capWorkbook(t, importRowCap), testCompanies())
	require.NoError(t, err)
	require.Equal(t, importRowCap, report.TotalRows)
	require.Equal(t, importRowCap, report.ValidCount)
}

func TestParseWorkbookOverRowCap(t *testing.T) {
	t.Parallel()

	svc := NewExcelService()
	_, err := svc.ParseWorkbook(capWorkbook(t, importRowCap+1), testCompanies())

	var capErr *RowCapError
	require.True(t, errors.As(err, &capErr))
	require.Equal(t, importRowCap+1, capErr.Rows)
	require.Equal(t, importRowCap, capErr.Limit)
}

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	svc := NewExcelService()
	require.NoError(t, svc.ValidateExtension("report.xlsx"))
	require.NoError(t, svc.ValidateExtension("report.XLSX"))
	require.NoError(t, svc.ValidateExtension("legacy.xls"))
	require.ErrorIs(t, svc.ValidateExtension("report.csv"), ErrInvalidFileType)
	require.ErrorIs(t, svc.ValidateExtension("report"), ErrInvalidFileType)
}

func TestGeneratedTemplateRoundTrips(t *testing.T) {
	t.Parallel()

	svc := NewExcelService()
	path := t.TempDir() + "/template.xlsx"
	require.NoError(t, svc.GenerateImportTemplate(path))

	// A freshly generated template with only the example row parses to an
	// empty report: the example row must never count as data.
	report, err := svc.ParseTransactionFile(path, testCompanies())
	require.NoError(t, err)
	require.Equal(t, 0, report.TotalRows)
	require.Empty(t, report.ValidRows)
	require.Empty(t, report.RowErrors)
}
