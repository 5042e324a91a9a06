// Package core holds the data-access contracts shared by every domain
// package: a thin Conn/Transaction abstraction over pgx and the option
// structs repositories use to join a caller's transaction or take row
// locks.
package core

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// ErrNotFound is returned by any repository lookup that matches no row.
var ErrNotFound = errors.New("core: record not found")

// Conn is the slice of pgx that repositories execute against. Both a pool
// and an open transaction satisfy it.
type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Transaction interface {
	Conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// QueryOptions selects the connection for a read; ForUpdate additionally
// takes a write-intent lock on the rows read, which only makes sense
// inside a transaction.
type QueryOptions struct {
	ForUpdate bool
	Tx        Transaction
}

// UpdateOptions routes a write through a caller-owned transaction instead
// of the default pool connection.
type UpdateOptions struct {
	Tx Transaction
}
