package repository

import (
	"fmt"

	"portfolio-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type CompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindAll(limit, offset int, search string) ([]models.Company, int, error) {
	var companies []models.Company
	var total int

	whereClause := ""
	args := []interface{}{}

	if search != "" {
		whereClause = "WHERE name LIKE ? OR symbol LIKE ?"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM companies %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       name,
		       COALESCE(symbol, '') as symbol,
		       COALESCE(sector, '') as sector,
		       is_active,
		       created_at,
		       updated_at
		FROM companies %s
		ORDER BY name
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&companies, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *CompanyRepository) FindByID(id int) (*models.Company, error) {
	var company models.Company
	query := `
		SELECT id,
		       name,
		       COALESCE(symbol, '') as symbol,
		       COALESCE(sector, '') as sector,
		       is_active,
		       created_at,
		       updated_at
		FROM companies
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&company, query, id)
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Create(company *models.Company) error {
	query := `INSERT INTO companies (name, symbol, sector, is_active)
	          VALUES (:name, :symbol, :sector, :is_active)`
	result, err := r.db.NamedExec(query, company)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	company.ID = int(id)
	return nil
}

func (r *CompanyRepository) Update(company *models.Company) error {
	query := `UPDATE companies SET name = :name, symbol = :symbol, sector = :sector,
	          is_active = :is_active WHERE id = :id`
	_, err := r.db.NamedExec(query, company)
	return err
}

func (r *CompanyRepository) Delete(id int) error {
	query := "DELETE FROM companies WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

// GetActiveRefs returns the id+name snapshot the import validator resolves
// company-name cells against.
func (r *CompanyRepository) GetActiveRefs() ([]models.CompanyRef, error) {
	var refs []models.CompanyRef
	query := "SELECT id, name FROM companies WHERE is_active = TRUE ORDER BY name"
	err := r.db.Select(&refs, query)
	return refs, err
}
