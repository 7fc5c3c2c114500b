package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Sector    string    `db:"sector" json:"sector"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CompanyRequest struct {
	Name     string `json:"name" validate:"required"`
	Symbol   string `json:"symbol"`
	Sector   string `json:"sector"`
	IsActive bool   `json:"is_active"`
}

// CompanyRef is the minimal id+name pair the import pipeline resolves
// company-name cells against. Snapshot of the live company list, read-only.
type CompanyRef struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type PricePoint struct {
	ID         int64           `db:"id" json:"id"`
	CompanyID  int             `db:"company_id" json:"company_id"`
	Price      decimal.Decimal `db:"price" json:"price"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type PricePointRequest struct {
	Price      decimal.Decimal `json:"price" validate:"required"`
	RecordedAt time.Time       `json:"recorded_at"`
}
