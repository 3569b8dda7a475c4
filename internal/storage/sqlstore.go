package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect is the SQL flavour a store talks to.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Rebind rewrites ? placeholders into the dialect's bind syntax.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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

// SQLStore implements the data methods of Provider over database/sql.
// The sqlite and postgres backends embed it and own connection setup.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
}

// Ping runs a trivial query. It fails before Init or Load.
func (s *SQLStore) Ping() error {
	if s.DB == nil {
		return errors.New("database connection is not open")
	}
	var one int
	return s.DB.QueryRow("SELECT 1").Scan(&one)
}

func (s *SQLStore) exec(q string, args ...any) (sql.Result, error) {
	return s.DB.Exec(s.Dialect.Rebind(q), args...)
}

func (s *SQLStore) query(q string, args ...any) (*sql.Rows, error) {
	return s.DB.Query(s.Dialect.Rebind(q), args...)
}

func (s *SQLStore) queryRow(q string, args ...any) *sql.Row {
	return s.DB.QueryRow(s.Dialect.Rebind(q), args...)
}

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t txStore) exec(q string, args ...any) (sql.Result, error) {
	return t.tx.Exec(t.dialect.Rebind(q), args...)
}

func (t txStore) queryRow(q string, args ...any) *sql.Row {
	return t.tx.QueryRow(t.dialect.Rebind(q), args...)
}

func (s *SQLStore) begin() (txStore, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return txStore{}, err
	}
	return txStore{tx: tx, dialect: s.Dialect}, nil
}

// Times are stored as UTC RFC3339 so string order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
