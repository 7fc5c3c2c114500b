package repository

import (
	"fmt"

	"portfolio-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create persists one transaction. This is the single submit operation the
// import commit loop calls once per staged row.
func (r *TransactionRepository) Create(tx *models.Transaction) error {
	query := `INSERT INTO transactions
	          (user_id, company_id, company_name, trade_date, type, quantity, price, fees, total, remarks)
	          VALUES (:user_id, :company_id, :company_name, :trade_date, :type, :quantity, :price, :fees, :total, :remarks)`
	result, err := r.db.NamedExec(query, tx)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	tx.ID = id
	return nil
}

func (r *TransactionRepository) FindAll(userID, companyID, limit, offset int) ([]models.Transaction, int, error) {
	var transactions []models.Transaction
	var total int

	whereClause := "WHERE user_id = ?"
	args := []interface{}{userID}

	if companyID > 0 {
		whereClause += " AND company_id = ?"
		args = append(args, companyID)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       user_id,
		       company_id,
		       COALESCE(company_name, '') as company_name,
		       trade_date,
		       type,
		       quantity,
		       price,
		       fees,
		       total,
		       COALESCE(remarks, '') as remarks,
		       created_at,
		       updated_at
		FROM transactions %s
		ORDER BY trade_date DESC, id DESC
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&transactions, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *TransactionRepository) FindByID(id int64) (*models.Transaction, error) {
	var tx models.Transaction
	query := `
		SELECT id,
		       user_id,
		       company_id,
		       COALESCE(company_name, '') as company_name,
		       trade_date,
		       type,
		       quantity,
		       price,
		       fees,
		       total,
		       COALESCE(remarks, '') as remarks,
		       created_at,
		       updated_at
		FROM transactions
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&tx, query, id)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Update(tx *models.Transaction) error {
	query := `UPDATE transactions SET company_id = :company_id, company_name = :company_name,
	          trade_date = :trade_date, type = :type, quantity = :quantity, price = :price,
	          fees = :fees, total = :total, remarks = :remarks
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, tx)
	return err
}

func (r *TransactionRepository) Delete(id int64) error {
	query := "DELETE FROM transactions WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
