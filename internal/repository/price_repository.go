package repository

import (
	"portfolio-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type PriceRepository struct {
	db *sqlx.DB
}

func NewPriceRepository(db *sqlx.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) Add(point *models.PricePoint) error {
	query := `INSERT INTO price_points (company_id, price, recorded_at)
	          VALUES (:company_id, :price, :recorded_at)`
	result, err := r.db.NamedExec(query, point)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	point.ID = id
	return nil
}

func (r *PriceRepository) HistoryByCompany(companyID, limit, offset int) ([]models.PricePoint, int, error) {
	var points []models.PricePoint
	var total int

	err := r.db.Get(&total, "SELECT COUNT(*) FROM price_points WHERE company_id = ?", companyID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM price_points WHERE company_id = ?
	          ORDER BY recorded_at DESC LIMIT ? OFFSET ?`
	err = r.db.Select(&points, query, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return points, total, nil
}

func (r *PriceRepository) Latest(companyID int) (*models.PricePoint, error) {
	var point models.PricePoint
	query := `SELECT * FROM price_points WHERE company_id = ?
	          ORDER BY recorded_at DESC LIMIT 1`
	err := r.db.Get(&point, query, companyID)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (r *PriceRepository) Delete(id int64) error {
	query := "DELETE FROM price_points WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
