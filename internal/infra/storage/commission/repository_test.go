package commission

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var now = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_GetByBookingID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM commissions WHERE booking_id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(commissionColumns).
			AddRow(int64(1), int64(42), int64(2), int64(2100), int64(315), int64(1785), true, int64(9), now, now))

	c, err := repo.GetByBookingID(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(315), c.CommissionCents)
	assert.True(t, c.Processed)
	require.NotNil(t, c.PayoutID)
	assert.Equal(t, int64(9), *c.PayoutID)
	require.NotNil(t, c.ProcessedAt)
}

func TestRepository_GetByBookingID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM commissions`).WillReturnRows(sqlmock.NewRows(commissionColumns))

	_, err := repo.GetByBookingID(context.Background(), 42)

	assert.ErrorIs(t, err, ErrCommissionNotFound)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO commissions \(booking_id,owner_id,total_cents,commission_cents,net_cents,processed,created_at\)`).
		WithArgs(int64(42), int64(2), int64(2100), int64(315), int64(1785), false, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	c, err := repo.Create(context.Background(), &domain.Commission{
		BookingID: 42, OwnerID: 2, TotalCents: 2100, CommissionCents: 315, NetCents: 1785, CreatedAt: now,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateAmounts_ProcessedIsRejected(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE commissions SET total_cents = \$1, commission_cents = \$2, net_cents = \$3 WHERE id = \$4 AND processed = \$5`).
		WithArgs(int64(2950), int64(443), int64(2507), int64(5), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAmounts(context.Background(), &domain.Commission{ID: 5, TotalCents: 2950, CommissionCents: 443, NetCents: 2507})

	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRepository_DeleteUnprocessed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM commissions WHERE booking_id = \$1 AND processed = \$2`).
		WithArgs(int64(42), false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM commissions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteUnprocessed(context.Background(), 42))
	assert.ErrorIs(t, repo.DeleteUnprocessed(context.Background(), 42), ErrCommissionNotFound)
}

func TestRepository_ListOwnersWithUnprocessed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT DISTINCT owner_id FROM commissions WHERE processed = \$1 ORDER BY owner_id ASC`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(2)).AddRow(int64(7)))

	owners, err := repo.ListOwnersWithUnprocessed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 7}, owners)
}

func TestRepository_ListUnprocessedByOwner(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM commissions WHERE owner_id = \$1 AND processed = \$2 ORDER BY id ASC`).
		WithArgs(int64(2), false).
		WillReturnRows(sqlmock.NewRows(commissionColumns).
			AddRow(int64(1), int64(42), int64(2), int64(2100), int64(315), int64(1785), false, nil, now, nil).
			AddRow(int64(3), int64(43), int64(2), int64(3700), int64(555), int64(3145), false, nil, now, nil))

	commissions, err := repo.ListUnprocessedByOwner(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, commissions, 2)
	assert.Nil(t, commissions[0].PayoutID)
	assert.Equal(t, int64(3145), commissions[1].NetCents)
}

func TestRepository_MarkProcessed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE commissions SET processed = \$1, payout_id = \$2, processed_at = \$3 WHERE id IN \(\$4,\$5\) AND processed = \$6`).
		WithArgs(true, int64(9), now, int64(1), int64(3), false).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.MarkProcessed(context.Background(), []int64{1, 3}, 9, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkProcessed_PartialUpdateFails(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE commissions`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkProcessed(context.Background(), []int64{1, 3}, 9, now)

	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRepository_MarkProcessed_Empty(t *testing.T) {
	repo, mock := newMock(t)

	require.NoError(t, repo.MarkProcessed(context.Background(), nil, 9, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
