package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type CellKind int

// CellValue is the closed set of shapes a raw sheet cell can take. Excel
// stores dates as serial day numbers, so date-typed cells arrive here as
// CellNumber under a raw read.
const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

type CellValue struct {
	Kind   CellKind
	Raw    string  // cell text exactly as read
	Number float64 // numeric value when Kind == CellNumber
}

// classifyCell maps one raw cell string onto the CellValue variant.
func classifyCell(raw string) CellValue {
	if strings.TrimSpace(raw) == "" {
		return CellValue{Kind: CellEmpty}
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return CellValue{Kind: CellNumber, Raw: raw, Number: n}
	}
	return CellValue{Kind: CellText, Raw: raw}
}

func (c CellValue) IsBlank() bool {
	return c.Kind == CellEmpty
}

// Text returns the trimmed cell content, empty for blank cells.
func (c CellValue) Text() string {
	return strings.TrimSpace(c.Raw)
}

// Decimal parses the cell as an exact decimal number. Thousand separators
// are tolerated the way users type them into spreadsheets.
func (c CellValue) Decimal() (decimal.Decimal, bool) {
	if c.IsBlank() {
		return decimal.Zero, false
	}
	s := strings.ReplaceAll(c.Text(), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// RawRow is one candidate data row lifted out of the template sheet.
// SourceRow is the original 1-based sheet row number, stable for error
// reporting regardless of skipped rows above it.
type RawRow struct {
	SourceRow int
	Cells     []CellValue
}

// cellAt returns the cell at index, blank when the row is too short.
func cellAt(cells []CellValue, index int) CellValue {
	if index < len(cells) {
		return cells[index]
	}
	return CellValue{Kind: CellEmpty}
}
