package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

const defaultStatsInterval = 15 * time.Second

// Observer принимает длительность запросов и статистику пула соединений
type Observer interface {
	ObserveDBQuery(operation string, err error, duration time.Duration)
}

// PoolObserver принимает статистику пула соединений
type PoolObserver interface {
	ObservePoolStats(stats sql.DBStats)
}

// DB обертка над *sql.DB, измеряющая длительность запросов.
// С nil observer работает как обычный *sql.DB.
type DB struct {
	db       *sql.DB
	observer Observer
}

// Wrap оборачивает *sql.DB
func Wrap(db *sql.DB, observer Observer) *DB {
	return &DB{db: db, observer: observer}
}

// WrapWithDefault оборачивает *sql.DB и запускает сбор статистики пула,
// пока не будет закрыт stopCh
func WrapWithDefault(db *sql.DB, observer Observer, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, observer)
	if pool, ok := observer.(PoolObserver); ok {
		go collectPoolStats(db, pool, defaultStatsInterval, stopCh)
	}
	return wrapped
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observe("exec", err, start)
	return res, err
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe("query", err, start)
	return rows, err
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observe("query_row", row.Err(), start)
	return row
}

// BeginTx начинает транзакцию с измерением запросов внутри нее
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	start := time.Now()
	tx, err := d.db.BeginTx(ctx, opts)
	d.observe("begin", err, start)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, observer: d.observer}, nil
}

func (d *DB) observe(op string, err error, start time.Time) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveDBQuery(op, err, time.Since(start))
}

// Tx обертка над *sql.Tx
type Tx struct {
	tx       *sql.Tx
	observer Observer
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.observe("tx_exec", err, start)
	return res, err
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.observe("tx_query", err, start)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.observe("tx_query_row", row.Err(), start)
	return row
}

func (t *Tx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.observe("commit", err, start)
	return err
}

func (t *Tx) Rollback() error {
	start := time.Now()
	err := t.tx.Rollback()
	t.observe("rollback", err, start)
	return err
}

func (t *Tx) observe(op string, err error, start time.Time) {
	if t.observer == nil {
		return
	}
	t.observer.ObserveDBQuery(op, err, time.Since(start))
}

func collectPoolStats(db *sql.DB, pool PoolObserver, interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			pool.ObservePoolStats(db.Stats())
		}
	}
}
