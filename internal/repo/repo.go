// Package repo contains all database access logic for the Stashport backend.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, which is how nested WithinTx calls work.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Transactor runs fn against repos bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. When the
// Transactor itself belongs to a transaction, the nested call is a savepoint:
// a failure there rolls back only the nested work.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// Repos bundles every repository over one connection or transaction.
type Repos struct {
	Itineraries ItineraryRepo
	Days        DayRepo
	Categories  CategoryRepo
	Tags        TagRepo
	Profiles    ProfileRepo
	Tx          Transactor
}

// New builds the full set of repositories over db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func New(db db) Repos {
	return Repos{
		Itineraries: NewItineraryRepo(db),
		Days:        NewDayRepo(db),
		Categories:  NewCategoryRepo(db),
		Tags:        NewTagRepo(db),
		Profiles:    NewProfileRepo(db),
		Tx:          &pgTransactor{db: db},
	}
}

type pgTransactor struct {
	db db
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// sendBatch runs b and returns the first error. An empty batch is a no-op.
func sendBatch(ctx context.Context, db db, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	return db.SendBatch(ctx, b).Close()
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString returns "" for a NULL text column.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
