package sweep_bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
)

const (
	defaultBatchSize = 500
	defaultWorkers   = 4

	// Пауза после ошибки удваивается с каждой неудачей подряд
	failureBackoff    = time.Minute
	maxFailureBackoff = time.Hour
)

// retryState пауза для бронирования, переход которого завершился ошибкой
type retryState struct {
	failures int
	until    time.Time
}

// UseCase применяет переходы по времени: approved -> active и active -> completed
type UseCase struct {
	bookingRepo BookingRepository
	commissions CommissionAccountant
	txManager   TransactionManager
	metrics     MetricsRecorder
	cfg         Config
	logger      Logger

	mu      sync.Mutex
	retries map[int64]retryState
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	commissions CommissionAccountant,
	txManager TransactionManager,
	metrics MetricsRecorder,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &UseCase{
		bookingRepo: bookingRepo,
		commissions: commissions,
		txManager:   txManager,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
		retries:     make(map[int64]retryState),
	}
}

// Execute выполняет один проход на момент now.
// Каждое бронирование обрабатывается в своей транзакции; ошибка по одному
// бронированию логируется и не прерывает остальные. Уже переведенные
// бронирования пропускаются без новых событий. Бронирование с ошибкой
// не выбирается до конца паузы, чтобы не вытеснять остальные из пачки.
func (uc *UseCase) Execute(ctx context.Context, now time.Time) (*Result, error) {
	skip := uc.deferred(now)

	due, err := uc.bookingRepo.ListDue(ctx, now, uc.cfg.BatchSize, skip)
	if err != nil {
		uc.logger.Error("Sweep: failed to list due bookings: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrListDue, err)
	}

	result := &Result{Now: now, Scanned: len(due), Deferred: len(skip)}
	if len(due) == 0 {
		uc.metrics.RecordSweep(0, 0)
		return result, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Workers)

	for _, b := range due {
		bookingID := b.ID
		g.Go(func() error {
			activated, completed, err := uc.advance(gCtx, bookingID, now)
			uc.track(bookingID, err, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				uc.logger.Error("Sweep: booking id=%d failed: %v", bookingID, err)
				return nil
			}
			if activated {
				result.Activated++
			}
			if completed {
				result.Completed++
			}
			return nil
		})
	}
	_ = g.Wait()

	uc.metrics.RecordSweep(result.Changed(), result.Failed)
	uc.logger.Info("Sweep: now=%s scanned=%d activated=%d completed=%d failed=%d deferred=%d",
		now.Format(time.RFC3339), result.Scanned, result.Activated, result.Completed, result.Failed, result.Deferred)

	return result, nil
}

// deferred возвращает бронирования на паузе и забывает давно истекшие паузы
func (uc *UseCase) deferred(now time.Time) []int64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	skip := make([]int64, 0, len(uc.retries))
	for id, r := range uc.retries {
		switch {
		case r.until.After(now):
			skip = append(skip, id)
		case now.Sub(r.until) > maxFailureBackoff:
			delete(uc.retries, id)
		}
	}
	sort.Slice(skip, func(i, j int) bool { return skip[i] < skip[j] })
	return skip
}

// track ставит бронирование на паузу после ошибки и снимает ее после успеха
func (uc *UseCase) track(bookingID int64, err error, now time.Time) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err == nil {
		delete(uc.retries, bookingID)
		return
	}

	r := uc.retries[bookingID]
	r.failures++
	backoff := maxFailureBackoff
	if r.failures <= 6 {
		backoff = min(failureBackoff<<(r.failures-1), maxFailureBackoff)
	}
	r.until = now.Add(backoff)
	uc.retries[bookingID] = r
}

// advance повторно читает бронирование под блокировкой и применяет все наступившие переходы.
// Бронирование, у которого прошли и начало, и конец, проходит оба шага за один вызов.
func (uc *UseCase) advance(ctx context.Context, bookingID int64, now time.Time) (activated, completed bool, err error) {
	var transitions [][2]domain.BookingStatus

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		transitions = transitions[:0]

		b, err := uc.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil
			}
			return fmt.Errorf("%w: load booking: %v", ErrInternal, err)
		}

		if b.Status == domain.StatusApproved {
			if err := b.Activate(now); err != nil {
				if !errors.Is(err, domain.ErrNotDue) {
					return err
				}
			} else {
				transitions = append(transitions, [2]domain.BookingStatus{domain.StatusApproved, domain.StatusActive})
			}
		}

		if b.Status == domain.StatusActive {
			if err := b.Complete(now); err != nil {
				if !errors.Is(err, domain.ErrNotDue) {
					return err
				}
			} else {
				transitions = append(transitions, [2]domain.BookingStatus{domain.StatusActive, domain.StatusCompleted})
			}
		}

		if len(transitions) == 0 {
			return nil
		}

		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return fmt.Errorf("%w: update booking: %v", ErrInternal, err)
		}

		if b.Status == domain.StatusCompleted {
			if _, err := uc.commissions.OnConfirmed(txCtx, b); err != nil {
				return fmt.Errorf("%w: commission: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		return false, false, err
	}

	for _, t := range transitions {
		uc.metrics.RecordTransition(string(t[0]), string(t[1]))
		switch t[1] {
		case domain.StatusActive:
			activated = true
		case domain.StatusCompleted:
			completed = true
		}
	}

	return activated, completed, nil
}
