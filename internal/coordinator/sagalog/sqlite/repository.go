// Package sqlite stores the checkout attempt log in SQLite.
//
// WAL mode lets the status endpoints read while a sequencer goroutine writes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"

	// Pure-Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so updated_at sorts correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Repository struct {
	db *sql.DB
}

var _ sagalog.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and migrates it to the
// latest schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return nil
}

// Save appends entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *sagalog.Entry) error {
	const q = `
		INSERT INTO checkout_attempt_logs
			(attempt_id, session_id, status, state, payment_method, order_id,
			 payment_intent_id, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.AttemptID,
		entry.SessionID,
		string(entry.Status),
		entry.State,
		entry.PaymentMethod,
		nullableString(entry.OrderID),
		nullableString(entry.PaymentIntentID),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save attempt log for %q: %w", entry.AttemptID, err)
	}
	return nil
}

const selectColumns = `
	attempt_id, session_id, status, state, payment_method,
	COALESCE(order_id, ''), COALESCE(payment_intent_id, ''),
	error_messages, trace_id, span_id, updated_at`

func (r *Repository) GetLatest(ctx context.Context, attemptID string) (*sagalog.Entry, error) {
	q := `SELECT ` + selectColumns + `
		FROM   checkout_attempt_logs
		WHERE  attempt_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, q, attemptID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sagalog.ErrNotFound, attemptID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", attemptID, err)
	}
	return entry, nil
}

func (r *Repository) ListOrphaned(ctx context.Context, limit int) ([]sagalog.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + selectColumns + `
		FROM   checkout_attempt_logs
		WHERE  status = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, string(sagalog.StatusOrphaned), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orphaned: %w", err)
	}
	defer rows.Close()

	var entries []sagalog.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan orphaned: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*sagalog.Entry, error) {
	var entry sagalog.Entry
	var updatedAt string
	err := s.Scan(
		&entry.AttemptID,
		&entry.SessionID,
		&entry.Status,
		&entry.State,
		&entry.PaymentMethod,
		&entry.OrderID,
		&entry.PaymentIntentID,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return &entry, nil
}

// nullableString stores NULL for ids that were never assigned.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
