package service

import (
	"testing"

	"portfolio-web/internal/models"

	"github.com/stretchr/testify/require"
)

// rawRow builds a RawRow from raw cell strings, classified the same way the
// extractor classifies sheet cells.
func rawRow(sourceRow int, cells ...string) RawRow {
	values := make([]CellValue, 0, len(cells))
	for _, cell := range cells {
		values = append(values, classifyCell(cell))
	}
	return RawRow{SourceRow: sourceRow, Cells: values}
}

func testValidator() *rowValidator {
	return newRowValidator(testCompanies())
}

func TestValidateRowValid(t *testing.T) {
	t.Parallel()

	row, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "Buy", "100", "250.5", "25", "first trade"))
	require.Nil(t, rowErr)
	require.NotNil(t, row)

	require.Equal(t, 7, row.SourceRow)
	require.Equal(t, 1, row.CompanyID)
	require.Equal(t, "Acme Industries", row.CompanyName)
	require.Equal(t, "2024-03-05", row.TradeDate.Format("2006-01-02"))
	require.Equal(t, "Buy", row.Type)
	require.Equal(t, "first trade", row.Remarks)

	// Exact decimal arithmetic: 100 * 250.5 must be exactly 25050.
	require.Equal(t, "25050", row.Total.String())
	require.Equal(t, "25", row.Fees.String())
}

func TestValidateRowAccumulatesAllErrors(t *testing.T) {
	t.Parallel()

	// Unknown company, invalid type, non-positive quantity: one row error
	// carrying all three messages, not just the first.
	_, rowErr := testValidator().ValidateRow(
		rawRow(10, "05/03/2024", "No Such Company", "bought", "-5", "250.5", "0", ""))
	require.NotNil(t, rowErr)

	require.Equal(t, 10, rowErr.SourceRow)
	require.Len(t, rowErr.Messages, 3)
	require.Contains(t, rowErr.Messages, `Company "No Such Company" not found in system`)
	require.Contains(t, rowErr.Messages, "Type must be exactly 'Buy' or 'Sell'")
	require.Contains(t, rowErr.Messages, "Invalid quantity")
}

func TestValidateRowTypeIsCaseSensitive(t *testing.T) {
	t.Parallel()

	_, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "sell", "10", "5", "0", ""))
	require.NotNil(t, rowErr)
	require.Contains(t, rowErr.Messages, "Type must be exactly 'Buy' or 'Sell'")
}

func TestValidateRowMissingDateSuppressesFormatError(t *testing.T) {
	t.Parallel()

	_, rowErr := testValidator().ValidateRow(
		rawRow(7, "", "Acme Industries", "Buy", "10", "5", "0", ""))
	require.NotNil(t, rowErr)
	require.Equal(t, []string{"Missing date"}, []string(rowErr.Messages))
}

func TestValidateRowInvalidDateFormat(t *testing.T) {
	t.Parallel()

	_, rowErr := testValidator().ValidateRow(
		rawRow(7, "March 5th 2024", "Acme Industries", "Buy", "10", "5", "0", ""))
	require.NotNil(t, rowErr)
	require.Equal(t, []string{"Invalid date format"}, []string(rowErr.Messages))
}

func TestValidateRowMissingCompany(t *testing.T) {
	t.Parallel()

	_, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "", "Buy", "10", "5", "0", ""))
	require.NotNil(t, rowErr)
	require.Equal(t, []string{"Missing company name"}, []string(rowErr.Messages))
}

func TestValidateRowCompanyMatchIgnoresCaseAndSpace(t *testing.T) {
	t.Parallel()

	row, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "  acme industries  ", "Buy", "10", "5", "0", ""))
	require.Nil(t, rowErr)
	require.Equal(t, 1, row.CompanyID)
	// The resolved row carries the registered name, not the cell spelling.
	require.Equal(t, "Acme Industries", row.CompanyName)
}

func TestValidateRowAmbiguousCompany(t *testing.T) {
	t.Parallel()

	// A second registration that differs only in casing collides after
	// normalization.
	validator := newRowValidator(append(testCompanies(),
		models.CompanyRef{ID: 9, Name: "ACME INDUSTRIES"}))

	_, rowErr := validator.ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "Buy", "10", "5", "0", ""))
	require.NotNil(t, rowErr)
	require.Contains(t, rowErr.Messages, `Company name "Acme Industries" is ambiguous`)
}

func TestValidateRowFeesFallBackToZero(t *testing.T) {
	t.Parallel()

	row, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "Buy", "10", "5", "n/a", ""))
	require.Nil(t, rowErr)
	require.True(t, row.Fees.IsZero())
}

func TestValidateRowThousandSeparators(t *testing.T) {
	t.Parallel()

	row, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "Buy", "1,000", "2,500.50", "0", ""))
	require.Nil(t, rowErr)
	require.Equal(t, "1000", row.Quantity.String())
	require.Equal(t, "2500.5", row.Price.String())
	require.Equal(t, "2500500", row.Total.String())
}

func TestNormalizeDateEncodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"day-first text", "05/03/2024", "2024-03-05"},
		{"day-first text unpadded", "5/3/2024", "2024-03-05"},
		{"canonical passthrough", "2024-03-05", "2024-03-05"},
		{"serial number", "45356", "2024-03-05"},
		{"serial number earlier year", "45000", "2023-03-15"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeDate(classifyCell(tt.raw))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDateSurvivesNormalizationRoundTrip(t *testing.T) {
	t.Parallel()

	// The same calendar day entered as text and as a serial number must
	// stage identical trade dates.
	textRow, rowErr := testValidator().ValidateRow(
		rawRow(7, "05/03/2024", "Acme Industries", "Buy", "10", "5", "0", ""))
	require.Nil(t, rowErr)

	serialRow, rowErr := testValidator().ValidateRow(
		rawRow(8, "45356", "Acme Industries", "Buy", "10", "5", "0", ""))
	require.Nil(t, rowErr)

	require.Equal(t, textRow.TradeDate, serialRow.TradeDate)
}
