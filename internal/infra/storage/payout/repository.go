package payout

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий выплат владельцам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория выплат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет выплату
func (r *Repository) Create(ctx context.Context, p *domain.Payout) (*domain.Payout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payouts").
		Columns("run_id", "owner_id", "total_net_cents", "commission_ids", "created_at").
		Values(p.RunID.String(), p.OwnerID, p.TotalNetCents, pq.Array(p.CommissionIDs), p.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return p, nil
}

// ListByOwner получает выплаты владельца, новые первыми
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Payout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "run_id", "owner_id", "total_net_cents", "commission_ids", "created_at").
		From("payouts").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	payouts := make([]*domain.Payout, 0)
	for rows.Next() {
		var p domain.Payout
		err := rows.Scan(&p.ID, &p.RunID, &p.OwnerID, &p.TotalNetCents, pq.Array(&p.CommissionIDs), &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByOwner - scan payout: %v", ErrScanRow, err)
		}
		payouts = append(payouts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - rows error: %v", ErrScanRow, err)
	}

	return payouts, nil
}
