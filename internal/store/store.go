// Package store persists seasons, divisions, teams and games in a
// relational database. The same portable SQL runs on SQLite and Postgres;
// queries are written with ? placeholders and rebound per dialect.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rinkstats/siahl/internal/db"
)

// ErrNotFound is returned by single-row reads when the row does not exist.
var ErrNotFound = errors.New("not found")

// Dialect selects placeholder syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Rebind rewrites ? placeholders to $1, $2... for Postgres.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ChangeKind describes what an upsert did.
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Inserted
	Updated
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Change is the outcome of one upsert. OldName is set when a stored
// entity was renamed.
type Change struct {
	Kind    ChangeKind
	OldName string
}

// Renamed reports whether the upsert overwrote a different stored name.
func (c Change) Renamed() bool { return c.OldName != "" }

// Store is the relational store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	loc     *time.Location
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the zone game start times are returned in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New wraps an opened database.
func New(d *db.DB, opts ...Option) *Store {
	dialect := DialectSQLite
	if d.Driver == db.Postgres {
		dialect = DialectPostgres
	}
	return NewSQL(d.DB, dialect, opts...)
}

// NewSQL wraps a raw *sql.DB with an explicit dialect.
func NewSQL(sqlDB *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: sqlDB, dialect: dialect, loc: time.UTC}
	for _, o := range opts {
		o(s)
	}
	return s
}

// tx scopes one unit of work: commit on success, rollback otherwise.
type tx struct {
	*sql.Tx
	dialect Dialect
}

func (t tx) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t tx) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

func (s *Store) withTx(ctx context.Context, fn func(tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(tx{Tx: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func intArgs(ids []int) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
