package service

import (
	"fmt"

	"portfolio-web/internal/models"

	"github.com/sirupsen/logrus"
)

// TransactionStore is the single operation the commit loop consumes from
// the persistence layer: submit one transaction, report success or failure.
type TransactionStore interface {
	Create(tx *models.Transaction) error
}

// RowMarker records a staged row as durably committed, making a retried
// commit skip it instead of submitting a duplicate.
type RowMarker func(row *models.ImportRow) error

// ProgressFunc receives the running committed/total counts after each row.
type ProgressFunc func(committed, total int)

type CommitService struct {
	store TransactionStore
	log   *logrus.Logger
}

func NewCommitService(store TransactionStore, log *logrus.Logger) *CommitService {
	return &CommitService{store: store, log: log}
}

// CommitRows persists staged rows one at a time, in source-file order,
// awaiting each submission before issuing the next. Rows already committed
// by an earlier attempt are skipped. The loop stops at the first failure
// and returns the committed count alongside the error, so callers know
// exactly which prefix of the batch is durable.
func (s *CommitService) CommitRows(rows []models.ImportRow, userID int, mark RowMarker, progress ProgressFunc) (int, error) {
	total := len(rows)
	committed := 0

	for i := range rows {
		row := &rows[i]
		if row.Committed {
			committed++
			continue
		}

		if err := s.store.Create(row.ToTransaction(userID)); err != nil {
			return committed, fmt.Errorf("row %d: %w", row.SourceRow, err)
		}

		if err := mark(row); err != nil {
			// The transaction is durable but the staging flag is not; a
			// retry after this error would resubmit the row. Surface it.
			return committed, fmt.Errorf("row %d committed but could not be marked: %w", row.SourceRow, err)
		}
		row.Committed = true
		committed++

		if progress != nil {
			progress(committed, total)
		}

		s.log.WithFields(logrus.Fields{
			"source_row": row.SourceRow,
			"committed":  committed,
			"total":      total,
		}).Debug("import row committed")
	}

	return committed, nil
}
