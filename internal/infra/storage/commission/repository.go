package commission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var commissionColumns = []string{
	"id",
	"booking_id",
	"owner_id",
	"total_cents",
	"commission_cents",
	"net_cents",
	"processed",
	"payout_id",
	"created_at",
	"processed_at",
}

// Repository репозиторий комиссий платформы
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория комиссий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBookingID получает комиссию бронирования.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Commission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(commissionColumns...).
		From("commissions").
		Where(squirrel.Eq{"booking_id": bookingID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanCommission(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan commission: %v", ErrScanRow, err)
	}

	return c, nil
}

// Create создает запись комиссии
func (r *Repository) Create(ctx context.Context, c *domain.Commission) (*domain.Commission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("commissions").
		Columns("booking_id", "owner_id", "total_cents", "commission_cents", "net_cents", "processed", "created_at").
		Values(c.BookingID, c.OwnerID, c.TotalCents, c.CommissionCents, c.NetCents, false, c.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return c, nil
}

// UpdateAmounts пересчитывает суммы невыплаченной комиссии
func (r *Repository) UpdateAmounts(ctx context.Context, c *domain.Commission) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("commissions").
		Set("total_cents", c.TotalCents).
		Set("commission_cents", c.CommissionCents).
		Set("net_cents", c.NetCents).
		Where(squirrel.Eq{"id": c.ID, "processed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateAmounts - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectRows(ctx, executor, query, args, 1, "UpdateAmounts")
}

// DeleteUnprocessed удаляет невыплаченную комиссию бронирования
func (r *Repository) DeleteUnprocessed(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("commissions").
		Where(squirrel.Eq{"booking_id": bookingID, "processed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteUnprocessed - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteUnprocessed - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteUnprocessed - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrCommissionNotFound
	}

	return nil
}

// ListOwnersWithUnprocessed получает владельцев, у которых есть невыплаченные комиссии
func (r *Repository) ListOwnersWithUnprocessed(ctx context.Context) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT owner_id").
		From("commissions").
		Where(squirrel.Eq{"processed": false}).
		OrderBy("owner_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOwnersWithUnprocessed - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOwnersWithUnprocessed - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ownerIDs := make([]int64, 0)
	for rows.Next() {
		var ownerID int64
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("%w: ListOwnersWithUnprocessed - scan owner_id: %v", ErrScanRow, err)
		}
		ownerIDs = append(ownerIDs, ownerID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOwnersWithUnprocessed - rows error: %v", ErrScanRow, err)
	}

	return ownerIDs, nil
}

// ListUnprocessedByOwner получает невыплаченные комиссии владельца.
// Внутри транзакции строки блокируются, чтобы их не забрал параллельный запуск.
func (r *Repository) ListUnprocessedByOwner(ctx context.Context, ownerID int64) ([]*domain.Commission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(commissionColumns...).
		From("commissions").
		Where(squirrel.Eq{"owner_id": ownerID, "processed": false}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessedByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessedByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	commissions := make([]*domain.Commission, 0)
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListUnprocessedByOwner - scan commission: %v", ErrScanRow, err)
		}
		commissions = append(commissions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessedByOwner - rows error: %v", ErrScanRow, err)
	}

	return commissions, nil
}

// MarkProcessed помечает комиссии выплаченными в рамках payoutID.
// Если хотя бы одна из них уже выплачена, возвращает ErrAlreadyProcessed.
func (r *Repository) MarkProcessed(ctx context.Context, ids []int64, payoutID int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("commissions").
		Set("processed", true).
		Set("payout_id", payoutID).
		Set("processed_at", at).
		Where(squirrel.Eq{"id": ids, "processed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectRows(ctx, executor, query, args, int64(len(ids)), "MarkProcessed")
}

func (r *Repository) execExpectRows(ctx context.Context, executor DBExecutor, query string, args []interface{}, want int64, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected != want {
		return fmt.Errorf("%w: %s - updated %d of %d rows", ErrAlreadyProcessed, op, rowsAffected, want)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommission(row rowScanner) (*domain.Commission, error) {
	var c domain.Commission
	var payoutID sql.NullInt64
	var processedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.BookingID,
		&c.OwnerID,
		&c.TotalCents,
		&c.CommissionCents,
		&c.NetCents,
		&c.Processed,
		&payoutID,
		&c.CreatedAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	if payoutID.Valid {
		c.PayoutID = &payoutID.Int64
	}
	if processedAt.Valid {
		c.ProcessedAt = &processedAt.Time
	}

	return &c, nil
}
