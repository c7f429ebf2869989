package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"listing_id",
	"owner_id",
	"renter_id",
	"vehicle_id",
	"start_time",
	"end_time",
	"hourly_rate",
	"tiered_pricing",
	"pricing_method",
	"total_price_cents",
	"status",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями и их журналом событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование вместе с его событиями.
// Должен вызываться в транзакции: строка и журнал пишутся атомарно.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	tiered, err := encodeTable(booking.TieredPricing)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - tiered pricing: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"listing_id",
			"owner_id",
			"renter_id",
			"vehicle_id",
			"start_time",
			"end_time",
			"hourly_rate",
			"tiered_pricing",
			"pricing_method",
			"total_price_cents",
			"status",
			"version",
			"created_at",
			"updated_at",
		).
		Values(
			booking.ListingID,
			booking.OwnerID,
			booking.RenterID,
			booking.VehicleID,
			booking.StartTime,
			booking.EndTime,
			booking.HourlyRate,
			tiered,
			booking.PricingMethod,
			booking.TotalPriceCents,
			booking.Status,
			1,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	booking.Version = 1

	if err := r.appendEvents(ctx, executor, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByID получает бронирование с журналом событий.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	events, err := r.getEvents(ctx, executor, id)
	if err != nil {
		return nil, err
	}

	// Статус, окончание и цена восстанавливаются из журнала
	return domain.Replay(*row, events), nil
}

// GetActiveByVehicle получает нетерминальные бронирования транспортного средства,
// пересекающие окно [start, end). Внутри транзакции строки блокируются.
func (r *Repository) GetActiveByVehicle(ctx context.Context, vehicleID int64, start, end time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"status": statusStrings(domain.NonTerminalStatuses)}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByVehicle - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByVehicle - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListDue получает бронирования, которым пора сменить статус на момент now:
// approved с наступившим началом и active с наступившим окончанием.
// skipIDs исключаются из выборки, чтобы они не занимали место в пачке.
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int, skipIDs []int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": domain.StatusApproved},
				squirrel.LtOrEq{"start_time": now},
			},
			squirrel.And{
				squirrel.Eq{"status": domain.StatusActive},
				squirrel.LtOrEq{"end_time": now},
			},
		}).
		OrderBy("start_time ASC", "id ASC")

	if len(skipIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": skipIDs})
	}

	if limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(limit))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListFilter фильтр списка бронирований; nil поля не ограничивают выборку
type ListFilter struct {
	RenterID *int64
	OwnerID  *int64
	Status   *domain.BookingStatus
}

// List получает бронирования по фильтру, новые первыми. Журнал событий не загружается.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		OrderBy("start_time DESC", "id DESC")

	if filter.RenterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"renter_id": *filter.RenterID})
	}
	if filter.OwnerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// Update сохраняет проекцию бронирования и новые события.
// Запись проходит только если версия в БД совпадает с booking.Version.
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("end_time", booking.EndTime).
		Set("total_price_cents", booking.TotalPriceCents).
		Set("pricing_method", booking.PricingMethod).
		Set("updated_at", booking.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": booking.ID, "version": booking.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: booking id=%d version=%d", ErrVersionConflict, booking.ID, booking.Version)
	}
	booking.Version++

	return r.appendEvents(ctx, executor, booking)
}

// appendEvents дописывает несохраненные события в журнал
func (r *Repository) appendEvents(ctx context.Context, executor DBExecutor, booking *domain.Booking) error {
	events := booking.UncommittedEvents()
	if len(events) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("booking_events").
		Columns("booking_id", "seq", "type", "payload", "created_at")

	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("%w: appendEvents - payload seq=%d: %v", ErrEncode, e.Seq, err)
		}
		insertBuilder = insertBuilder.Values(booking.ID, e.Seq, e.Type, payload, e.CreatedAt)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: appendEvents - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: appendEvents - booking id=%d: %v", ErrExecQuery, booking.ID, err)
	}

	for i := range booking.Events {
		booking.Events[i].BookingID = booking.ID
	}
	booking.MarkCommitted()

	return nil
}

func (r *Repository) getEvents(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.Event, error) {
	query, args, err := psqlbuilder.Select("id", "booking_id", "seq", "type", "payload", "created_at").
		From("booking_events").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getEvents - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Seq, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: getEvents - scan event: %v", ErrScanRow, err)
		}
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("%w: getEvents - decode payload seq=%d: %v", ErrScanRow, e.Seq, err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// Вспомогательные методы

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var tiered []byte

	err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.OwnerID,
		&b.RenterID,
		&b.VehicleID,
		&b.StartTime,
		&b.EndTime,
		&b.HourlyRate,
		&tiered,
		&b.PricingMethod,
		&b.TotalPriceCents,
		&b.Status,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tiered) > 0 {
		if err := json.Unmarshal(tiered, &b.TieredPricing); err != nil {
			return nil, fmt.Errorf("decode tiered pricing: %v", err)
		}
	}

	return &b, nil
}

func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func encodeTable(t pricing.Table) (interface{}, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
