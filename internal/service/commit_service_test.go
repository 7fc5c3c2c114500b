package service

import (
	"errors"
	"testing"
	"time"

	"portfolio-web/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeStore records submitted transactions and can be told to fail on the
// nth call (1-based). failAt = 0 never fails.
type fakeStore struct {
	created []models.Transaction
	failAt  int
}

func (s *fakeStore) Create(tx *models.Transaction) error {
	if s.failAt > 0 && len(s.created)+1 == s.failAt {
		return errors.New("store unavailable")
	}
	s.created = append(s.created, *tx)
	return nil
}

func stagedRows(n int) []models.ImportRow {
	rows := make([]models.ImportRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.ImportRow{
			ID:          int64(i + 1),
			Ordinal:     i + 1,
			SourceRow:   i + 7,
			CompanyID:   1,
			CompanyName: "Acme Industries",
			TradeDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Type:        models.TransactionTypeBuy,
			Quantity:    decimal.NewFromInt(10),
			Price:       decimal.NewFromInt(5),
			Total:       decimal.NewFromInt(50),
		})
	}
	return rows
}

func testCommitService(store TransactionStore) *CommitService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewCommitService(store, log)
}

func noopMarker(*models.ImportRow) error { return nil }

func TestCommitRowsAll(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rows := stagedRows(3)

	var progress [][2]int
	committed, err := testCommitService(store).CommitRows(rows, 42, noopMarker,
		func(committed, total int) { progress = append(progress, [2]int{committed, total}) })
	require.NoError(t, err)
	require.Equal(t, 3, committed)
	require.Len(t, store.created, 3)

	// Rows are submitted in source-file order, stamped with the caller's user.
	for i, tx := range store.created {
		require.Equal(t, 42, tx.UserID)
		require.Equal(t, rows[i].SourceRow, i+7)
	}

	require.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestCommitRowsStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failAt: 3}
	rows := stagedRows(5)

	committed, err := testCommitService(store).CommitRows(rows, 42, noopMarker, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 9")

	// Exactly the prefix before the failure is durable; nothing after the
	// failed row was attempted.
	require.Equal(t, 2, committed)
	require.Len(t, store.created, 2)
	require.True(t, rows[0].Committed)
	require.True(t, rows[1].Committed)
	require.False(t, rows[2].Committed)
	require.False(t, rows[3].Committed)
}

func TestCommitRowsRetrySkipsCommittedPrefix(t *testing.T) {
	t.Parallel()

	rows := stagedRows(4)

	first := &fakeStore{failAt: 3}
	committed, err := testCommitService(first).CommitRows(rows, 42, noopMarker, nil)
	require.Error(t, err)
	require.Equal(t, 2, committed)

	// Retry with a healthy store: the durable prefix is skipped, only the
	// remaining rows are submitted, and no duplicates appear.
	second := &fakeStore{}
	committed, err = testCommitService(second).CommitRows(rows, 42, noopMarker, nil)
	require.NoError(t, err)
	require.Equal(t, 4, committed)
	require.Len(t, second.created, 2)
	require.True(t, rows[2].Committed)
	require.True(t, rows[3].Committed)
}

func TestCommitRowsMarkerFailureSurfaces(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rows := stagedRows(2)

	markErr := errors.New("staging table unreachable")
	committed, err := testCommitService(store).CommitRows(rows, 42,
		func(*models.ImportRow) error { return markErr }, nil)
	require.ErrorIs(t, err, markErr)
	require.Equal(t, 0, committed)
	// The transaction itself was submitted before marking failed.
	require.Len(t, store.created, 1)
}

func TestCommitRowsEmpty(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	committed, err := testCommitService(store).CommitRows(nil, 42, noopMarker, nil)
	require.NoError(t, err)
	require.Equal(t, 0, committed)
	require.Empty(t, store.created)
}
