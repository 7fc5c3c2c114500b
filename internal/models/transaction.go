package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeBuy  = "Buy"
	TransactionTypeSell = "Sell"
)

type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int             `db:"user_id" json:"user_id"`
	CompanyID   int             `db:"company_id" json:"company_id"`
	CompanyName string          `db:"company_name" json:"company_name"`
	TradeDate   time.Time       `db:"trade_date" json:"trade_date"`
	Type        string          `db:"type" json:"type"` // Buy, Sell
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Fees        decimal.Decimal `db:"fees" json:"fees"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Remarks     string          `db:"remarks" json:"remarks"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type TransactionRequest struct {
	CompanyID int             `json:"company_id" validate:"required"`
	TradeDate string          `json:"trade_date" validate:"required"` // YYYY-MM-DD
	Type      string          `json:"type" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Fees      decimal.Decimal `json:"fees"`
	Remarks   string          `json:"remarks"`
}
