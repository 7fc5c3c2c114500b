package repository

import (
	"portfolio-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) CreateSession(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions
	          (session_code, user_id, filename, state, total_rows, valid_rows, error_rows, committed_rows, progress, error_message)
	          VALUES (:session_code, :user_id, :filename, :state, :total_rows, :valid_rows, :error_rows, :committed_rows, :progress, :error_message)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *ImportRepository) GetSessionByCode(code string) (*models.ImportSession, error) {
	var session models.ImportSession
	query := `
		SELECT id,
		       session_code,
		       user_id,
		       filename,
		       state,
		       total_rows,
		       valid_rows,
		       error_rows,
		       committed_rows,
		       progress,
		       COALESCE(error_message, '') as error_message,
		       created_at,
		       updated_at
		FROM import_sessions
		WHERE session_code = ?
		LIMIT 1`
	err := r.db.Get(&session, query, code)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportRepository) GetSessionByID(id int) (*models.ImportSession, error) {
	var session models.ImportSession
	query := `
		SELECT id,
		       session_code,
		       user_id,
		       filename,
		       state,
		       total_rows,
		       valid_rows,
		       error_rows,
		       committed_rows,
		       progress,
		       COALESCE(error_message, '') as error_message,
		       created_at,
		       updated_at
		FROM import_sessions
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&session, query, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportRepository) UpdateSession(session *models.ImportSession) error {
	query := `UPDATE import_sessions SET state = :state, total_rows = :total_rows,
	          valid_rows = :valid_rows, error_rows = :error_rows, committed_rows = :committed_rows,
	          progress = :progress, error_message = :error_message
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, session)
	return err
}

func (r *ImportRepository) UpdateSessionState(id int, state string) error {
	query := "UPDATE import_sessions SET state = ? WHERE id = ?"
	_, err := r.db.Exec(query, state, id)
	return err
}

func (r *ImportRepository) SetProgress(id int, progress float64) error {
	query := "UPDATE import_sessions SET progress = ? WHERE id = ?"
	_, err := r.db.Exec(query, progress, id)
	return err
}

// BulkInsertRows stages every valid row of a parsed workbook in one statement.
func (r *ImportRepository) BulkInsertRows(sessionID int, rows []models.ImportRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].SessionID = sessionID
	}
	query := `INSERT INTO import_rows
	          (session_id, ordinal, source_row, company_id, company_name, trade_date, type, quantity, price, fees, total, remarks, committed)
	          VALUES (:session_id, :ordinal, :source_row, :company_id, :company_name, :trade_date, :type, :quantity, :price, :fees, :total, :remarks, :committed)`
	_, err := r.db.NamedExec(query, rows)
	return err
}

func (r *ImportRepository) BulkInsertRowErrors(sessionID int, rowErrors []models.RowError) error {
	if len(rowErrors) == 0 {
		return nil
	}
	for i := range rowErrors {
		rowErrors[i].SessionID = sessionID
	}
	query := `INSERT INTO import_row_errors (session_id, source_row, messages)
	          VALUES (:session_id, :source_row, :messages)`
	_, err := r.db.NamedExec(query, rowErrors)
	return err
}

func (r *ImportRepository) GetRowsBySession(sessionID, limit, offset int) ([]models.ImportRow, int, error) {
	var rows []models.ImportRow
	var total int

	err := r.db.Get(&total, "SELECT COUNT(*) FROM import_rows WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, session_id, ordinal, source_row, company_id, company_name,
		       trade_date, type, quantity, price, fees, total,
		       COALESCE(remarks, '') as remarks, committed
		FROM import_rows
		WHERE session_id = ?
		ORDER BY ordinal ASC
		LIMIT ? OFFSET ?`
	err = r.db.Select(&rows, query, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// GetAllRowsBySession returns the full staged set in ordinal order; the commit
// worker walks this slice sequentially.
func (r *ImportRepository) GetAllRowsBySession(sessionID int) ([]models.ImportRow, error) {
	var rows []models.ImportRow
	query := `
		SELECT id, session_id, ordinal, source_row, company_id, company_name,
		       trade_date, type, quantity, price, fees, total,
		       COALESCE(remarks, '') as remarks, committed
		FROM import_rows
		WHERE session_id = ?
		ORDER BY ordinal ASC`
	err := r.db.Select(&rows, query, sessionID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ImportRepository) GetRowErrorsBySession(sessionID int) ([]models.RowError, error) {
	var rowErrors []models.RowError
	query := `
		SELECT id, session_id, source_row, messages
		FROM import_row_errors
		WHERE session_id = ?
		ORDER BY source_row ASC`
	err := r.db.Select(&rowErrors, query, sessionID)
	if err != nil {
		return nil, err
	}
	return rowErrors, nil
}

func (r *ImportRepository) MarkRowCommitted(rowID int64) error {
	query := "UPDATE import_rows SET committed = TRUE WHERE id = ?"
	_, err := r.db.Exec(query, rowID)
	return err
}

// ClearRows drops the staged rows and errors so a re-upload starts clean.
func (r *ImportRepository) ClearRows(sessionID int) error {
	if _, err := r.db.Exec("DELETE FROM import_rows WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	_, err := r.db.Exec("DELETE FROM import_row_errors WHERE session_id = ?", sessionID)
	return err
}

func (r *ImportRepository) DeleteSession(id int) error {
	if err := r.ClearRows(id); err != nil {
		return err
	}
	_, err := r.db.Exec("DELETE FROM import_sessions WHERE id = ?", id)
	return err
}
