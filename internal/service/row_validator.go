package service

import (
	"fmt"
	"strings"
	"time"

	"portfolio-web/internal/models"

	"github.com/shopspring/decimal"
)

const canonicalDateLayout = "2006-01-02"

// Spreadsheet serial dates count days from the classic epoch correction:
// zero-day 1899-12-30, which sits 25569 days before the Unix epoch.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// rowValidator resolves company names against a snapshot of the live
// company list and turns raw rows into staged transactions or row errors.
type rowValidator struct {
	byName map[string][]models.CompanyRef
}

func newRowValidator(companies []models.CompanyRef) *rowValidator {
	byName := make(map[string][]models.CompanyRef, len(companies))
	for _, company := range companies {
		key := normalizeCompanyName(company.Name)
		byName[key] = append(byName[key], company)
	}
	return &rowValidator{byName: byName}
}

func normalizeCompanyName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateRow checks one extracted row and produces exactly one of a staged
// ImportRow or a RowError. Checks are evaluated independently so a single
// row reports every defect at once.
func (v *rowValidator) ValidateRow(row RawRow) (*models.ImportRow, *models.RowError) {
	var messages []string

	dateCell := cellAt(row.Cells, colDate)
	missingDate := dateCell.IsBlank()
	if missingDate {
		messages = append(messages, "Missing date")
	}

	companyName := cellAt(row.Cells, colCompany).Text()
	if companyName == "" {
		messages = append(messages, "Missing company name")
	}

	txType := cellAt(row.Cells, colType).Text()
	if txType != models.TransactionTypeBuy && txType != models.TransactionTypeSell {
		messages = append(messages, "Type must be exactly 'Buy' or 'Sell'")
	}

	quantity, ok := cellAt(row.Cells, colQuantity).Decimal()
	if !ok || !quantity.IsPositive() {
		messages = append(messages, "Invalid quantity")
	}

	price, ok := cellAt(row.Cells, colPrice).Decimal()
	if !ok || !price.IsPositive() {
		messages = append(messages, "Invalid price")
	}

	// Fees are optional and best-effort: unparseable values become zero.
	fees, ok := cellAt(row.Cells, colFees).Decimal()
	if !ok {
		fees = decimal.Zero
	}

	var company models.CompanyRef
	if companyName != "" {
		refs := v.byName[normalizeCompanyName(companyName)]
		switch len(refs) {
		case 0:
			messages = append(messages, fmt.Sprintf("Company %q not found in system", companyName))
		case 1:
			company = refs[0]
		default:
			messages = append(messages, fmt.Sprintf("Company name %q is ambiguous", companyName))
		}
	}

	var tradeDate time.Time
	if !missingDate {
		canonical := normalizeDate(dateCell)
		parsed, err := time.Parse(canonicalDateLayout, canonical)
		if canonical == "" || err != nil {
			messages = append(messages, "Invalid date format")
		} else {
			tradeDate = parsed
		}
	}

	if len(messages) > 0 {
		return nil, &models.RowError{
			SourceRow: row.SourceRow,
			Messages:  messages,
		}
	}

	return &models.ImportRow{
		SourceRow:   row.SourceRow,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		TradeDate:   tradeDate,
		Type:        txType,
		Quantity:    quantity,
		Price:       price,
		Fees:        fees,
		Total:       quantity.Mul(price),
		Remarks:     cellAt(row.Cells, colRemarks).Text(),
	}, nil
}

// normalizeDate maps the accepted date encodings onto the canonical
// YYYY-MM-DD form: serial day numbers (which is how date-typed cells arrive
// under a raw read), DD/MM/YYYY text, and already-canonical text.
func normalizeDate(cell CellValue) string {
	switch cell.Kind {
	case CellNumber:
		days := int(cell.Number)
		return spreadsheetEpoch.AddDate(0, 0, days).Format(canonicalDateLayout)
	case CellText:
		text := cell.Text()
		if strings.Contains(text, "/") {
			parts := strings.Split(text, "/")
			if len(parts) == 3 {
				// Day-first regional convention.
				day := zeroPad(strings.TrimSpace(parts[0]))
				month := zeroPad(strings.TrimSpace(parts[1]))
				year := strings.TrimSpace(parts[2])
				return fmt.Sprintf("%s-%s-%s", year, month, day)
			}
		}
		return text
	}
	return ""
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
