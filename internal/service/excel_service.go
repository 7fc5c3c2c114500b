package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"portfolio-web/internal/models"

	"github.com/xuri/excelize/v2"
)

// Template layout constants. The import pipeline only accepts workbooks
// produced from the officially issued template, identified by an exactly
// named data sheet with a fixed column order.
const (
	templateSheetName  = "Stock Transactions"
	templateHeaderRows = 5   // instruction/header rows before data begins
	importRowCap       = 500 // emitted data rows beyond this abort extraction

	// Markers are compared trimmed and case-folded.
	endOfTemplateMarker       = "end of template"
	exampleCompanyPlaceholder = "example company ltd"
)

// Column order inside the data region, 0-indexed.
const (
	colDate = iota
	colCompany
	colType
	colQuantity
	colPrice
	colFees
	colRemarks
	colTotal // spreadsheet-side convenience formula, never read

	businessColumns = colTotal // columns checked when skipping blank rows
)

var (
	ErrInvalidFileType      = errors.New("only Excel files (.xlsx, .xls) are allowed")
	ErrUnrecognizedTemplate = errors.New("workbook is not the official import template (missing the 'Stock Transactions' sheet)")
)

// RowCapError reports an upload whose data region exceeds the import limit.
type RowCapError struct {
	Rows  int
	Limit int
}

func (e *RowCapError) Error() string {
	return fmt.Sprintf("file contains %d data rows; the import limit is %d", e.Rows, e.Limit)
}

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ValidateExtension gates uploads on file extension before any bytes are parsed.
func (s *ExcelService) ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return ErrInvalidFileType
	}
	return nil
}

// ParseTransactionFile opens an uploaded workbook and runs the full
// recognize/extract/validate pipeline against the given company snapshot.
func (s *ExcelService) ParseTransactionFile(filePath string, companies []models.CompanyRef) (*models.ImportReport, error) {
	if err := s.ValidateExtension(filePath); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	return s.ParseWorkbook(f, companies)
}

// ParseWorkbook recognizes the template sheet, extracts its data region and
// validates every row. Pure with respect to external state: the report is
// fully determined by the workbook and the company snapshot.
func (s *ExcelService) ParseWorkbook(f *excelize.File, companies []models.CompanyRef) (*models.ImportReport, error) {
	if err := s.recognizeTemplate(f); err != nil {
		return nil, err
	}

	rows, err := s.extractRows(f)
	if err != nil {
		return nil, err
	}

	report := &models.ImportReport{
		ValidRows:  []models.ImportRow{},
		RowErrors:  []models.RowError{},
		TotalRows:  len(rows),
		ImportTime: time.Now(),
	}

	validator := newRowValidator(companies)
	for _, row := range rows {
		parsed, rowErr := validator.ValidateRow(row)
		if rowErr != nil {
			report.RowErrors = append(report.RowErrors, *rowErr)
			report.ErrorCount++
			continue
		}
		parsed.Ordinal = len(report.ValidRows) + 1
		report.ValidRows = append(report.ValidRows, *parsed)
		report.ValidCount++
	}

	return report, nil
}

// recognizeTemplate requires the exact template sheet name, case-sensitive.
// Structurally similar hand-rolled spreadsheets are rejected outright.
func (s *ExcelService) recognizeTemplate(f *excelize.File) error {
	for _, name := range f.GetSheetList() {
		if name == templateSheetName {
			return nil
		}
	}
	return ErrUnrecognizedTemplate
}

// extractRows walks the data region below the header rows and yields raw
// rows with their original 1-based sheet row numbers. The sentinel marker
// stops scanning; blank padding rows and the template's example row are
// skipped without counting as data.
func (s *ExcelService) extractRows(f *excelize.File) ([]RawRow, error) {
	// Raw values keep date cells as their underlying serial numbers.
	sheetRows, err := f.GetRows(templateSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var rows []RawRow
	for i := templateHeaderRows; i < len(sheetRows); i++ {
		cells := make([]CellValue, 0, len(sheetRows[i]))
		for _, raw := range sheetRows[i] {
			cells = append(cells, classifyCell(raw))
		}

		if strings.EqualFold(cellAt(cells, colDate).Text(), endOfTemplateMarker) {
			break
		}
		if blankRow(cells) {
			continue
		}
		if strings.EqualFold(cellAt(cells, colCompany).Text(), exampleCompanyPlaceholder) {
			continue
		}

		rows = append(rows, RawRow{SourceRow: i + 1, Cells: cells})
		if len(rows) > importRowCap {
			return nil, &RowCapError{Rows: countDataRows(sheetRows), Limit: importRowCap}
		}
	}

	return rows, nil
}

// countDataRows counts every emittable row for the cap-exceeded message,
// continuing past the point extraction gave up.
func countDataRows(sheetRows [][]string) int {
	count := 0
	for i := templateHeaderRows; i < len(sheetRows); i++ {
		cells := make([]CellValue, 0, len(sheetRows[i]))
		for _, raw := range sheetRows[i] {
			cells = append(cells, classifyCell(raw))
		}
		if strings.EqualFold(cellAt(cells, colDate).Text(), endOfTemplateMarker) {
			break
		}
		if blankRow(cells) || strings.EqualFold(cellAt(cells, colCompany).Text(), exampleCompanyPlaceholder) {
			continue
		}
		count++
	}
	return count
}

func blankRow(cells []CellValue) bool {
	for i := 0; i < businessColumns; i++ {
		if !cellAt(cells, i).IsBlank() {
			return false
		}
	}
	return true
}

// GenerateImportTemplate creates the official transaction import template.
func (s *ExcelService) GenerateImportTemplate(outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(templateSheetName)
	if err != nil {
		return err
	}

	f.SetCellValue(templateSheetName, "A1", "Stock Transaction Import Template")
	f.SetCellValue(templateSheetName, "A2", "Fill one transaction per row below the headers. Dates may be entered as spreadsheet dates or DD/MM/YYYY text.")
	f.SetCellValue(templateSheetName, "A3", "Type must be exactly 'Buy' or 'Sell'. Company Name must match a company registered in the system. Do not edit rows above the headers.")

	headers := []string{
		"Date", "Company Name", "Type", "Quantity", "Price", "Fees", "Remarks", "Total Amount",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%s%d", getColumnName(i), templateHeaderRows)
		f.SetCellValue(templateSheetName, cell, header)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	f.SetCellStyle(templateSheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(templateSheetName,
		fmt.Sprintf("A%d", templateHeaderRows),
		fmt.Sprintf("%s%d", getColumnName(len(headers)-1), templateHeaderRows),
		headerStyle)

	// Pre-filled example row; the extractor skips it by the company placeholder.
	exampleRow := templateHeaderRows + 1
	exampleValues := []interface{}{
		"05/03/2024", "Example Company Ltd", "Buy", 100, 250.5, 25, "Delete or overwrite this row",
	}
	for i, value := range exampleValues {
		cell := fmt.Sprintf("%s%d", getColumnName(i), exampleRow)
		f.SetCellValue(templateSheetName, cell, value)
	}

	// Total column carries a convenience formula for the user's reference.
	// The importer recomputes totals and never reads this column.
	lastDataRow := templateHeaderRows + importRowCap
	for row := exampleRow; row <= lastDataRow; row++ {
		cell := fmt.Sprintf("%s%d", getColumnName(colTotal), row)
		f.SetCellFormula(templateSheetName, cell, fmt.Sprintf("D%d*E%d", row, row))
	}

	// Sentinel row bounding the data region.
	f.SetCellValue(templateSheetName, fmt.Sprintf("A%d", lastDataRow+1), "END OF TEMPLATE")
	sentinelStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(templateSheetName,
		fmt.Sprintf("A%d", lastDataRow+1), fmt.Sprintf("A%d", lastDataRow+1), sentinelStyle)

	columnWidths := []float64{15, 30, 10, 12, 12, 12, 30, 15}
	for i, width := range columnWidths {
		colName := getColumnName(i)
		f.SetColWidth(templateSheetName, colName, colName, width)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateRowErrorReport creates an Excel report listing every rejected row
// with its accumulated messages, so the user can fix the source file.
func (s *ExcelService) GenerateRowErrorReport(report *models.ImportReport, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row Number", "Errors"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, rowErr := range report.RowErrors {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), rowErr.SourceRow)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), strings.Join(rowErr.Messages, "; "))
	}

	summaryStartRow := len(report.RowErrors) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Total Rows Processed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), report.TotalRows)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Valid Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), report.ValidCount)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Rejected Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), report.ErrorCount)

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 80)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
