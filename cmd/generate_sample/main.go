package main

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Generates a filled-in import workbook for manual testing of the upload
// flow: valid rows in several date encodings, an untouched example row, a
// blank gap, and a couple of rows that fail validation on purpose.
func main() {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Stock Transactions"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}

	f.SetCellValue(sheetName, "A1", "STOCK TRANSACTION IMPORT")
	f.SetCellValue(sheetName, "A2", "Fill in one transaction per row starting at row 6.")
	f.SetCellValue(sheetName, "A3", "Dates may be entered as spreadsheet dates or as DD/MM/YYYY text.")

	headers := []string{"Date", "Company", "Type", "Quantity", "Price", "Fees", "Remarks", "Total"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s5", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A5", fmt.Sprintf("%s5", getColumnName(len(headers)-1)), headerStyle)

	sampleData := [][]interface{}{
		// Untouched example row, the importer skips it
		{"05/03/2024", "Example Company Ltd", "Buy", 100, 250.5, 25, "delete or overwrite this row"},
		{"05/03/2024", "Acme Industries", "Buy", 100, 250.5, 25, "text date"},
		{45356, "Blue Harbor Shipping", "Sell", 50, 120, 0, "serial date"},
		{"2024-03-05", "Northwind Traders", "Buy", 200, 75.25, 12.5, "canonical date"},
		// Bad rows: unknown company, lowercase type
		{"06/03/2024", "No Such Company", "Buy", 10, 5, 0, ""},
		{"07/03/2024", "Acme Industries", "sell", 10, 5, 0, ""},
	}

	row := 6
	for _, rowData := range sampleData {
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
		f.SetCellFormula(sheetName, fmt.Sprintf("H%d", row), fmt.Sprintf("D%d*E%d", row, row))
		row++
	}

	// Leave one blank row, then the end marker
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "END OF TEMPLATE")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 30)
	f.SetColWidth(sheetName, "H", "H", 14)

	f.DeleteSheet("Sheet1")

	outputPath := filepath.Join("storage", "uploads", "sample_import.xlsx")
	if err := f.SaveAs(outputPath); err != nil {
		fmt.Printf("Error saving file: %v\n", err)
		return
	}

	fmt.Printf("Sample file created: %s\n", outputPath)
	fmt.Printf("  Data rows: %d (1 example row, 3 valid, 2 invalid)\n", len(sampleData))
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}
