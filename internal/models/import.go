package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportSession tracks one spreadsheet import job from upload to commit.
type ImportSession struct {
	ID            int       `db:"id" json:"id"`
	SessionCode   string    `db:"session_code" json:"session_code"`
	UserID        int       `db:"user_id" json:"user_id"`
	Filename      string    `db:"filename" json:"filename"`
	State         string    `db:"state" json:"state"` // upload, preview, importing, completed, canceled
	TotalRows     int       `db:"total_rows" json:"total_rows"`
	ValidRows     int       `db:"valid_rows" json:"valid_rows"`
	ErrorRows     int       `db:"error_rows" json:"error_rows"`
	CommittedRows int       `db:"committed_rows" json:"committed_rows"`
	Progress      float64   `db:"progress" json:"progress"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ImportRow is a validated transaction staged for commit. Ordinal preserves
// the source-file order; SourceRow is the original 1-based sheet row.
type ImportRow struct {
	ID          int64           `db:"id" json:"id"`
	SessionID   int             `db:"session_id" json:"session_id"`
	Ordinal     int             `db:"ordinal" json:"ordinal"`
	SourceRow   int             `db:"source_row" json:"source_row"`
	CompanyID   int             `db:"company_id" json:"company_id"`
	CompanyName string          `db:"company_name" json:"company_name"`
	TradeDate   time.Time       `db:"trade_date" json:"trade_date"`
	Type        string          `db:"type" json:"type"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Fees        decimal.Decimal `db:"fees" json:"fees"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Remarks     string          `db:"remarks" json:"remarks"`
	Committed   bool            `db:"committed" json:"committed"`
}

// ToTransaction converts a staged row into the transaction persisted on commit.
func (r *ImportRow) ToTransaction(userID int) *Transaction {
	return &Transaction{
		UserID:      userID,
		CompanyID:   r.CompanyID,
		CompanyName: r.CompanyName,
		TradeDate:   r.TradeDate,
		Type:        r.Type,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Fees:        r.Fees,
		Total:       r.Total,
		Remarks:     r.Remarks,
	}
}

// RowError collects every validation message for one rejected source row.
type RowError struct {
	ID        int64  `db:"id" json:"id"`
	SessionID int    `db:"session_id" json:"session_id"`
	SourceRow int    `db:"source_row" json:"source_row"`
	Messages  Lines  `db:"messages" json:"messages"`
}

// ImportReport is the outcome of extracting and validating one workbook.
type ImportReport struct {
	ValidRows  []ImportRow `json:"valid_rows"`
	RowErrors  []RowError  `json:"row_errors"`
	TotalRows  int         `json:"total_rows"`
	ValidCount int         `json:"valid_count"`
	ErrorCount int         `json:"error_count"`
	ImportTime time.Time   `json:"import_time"`
}
