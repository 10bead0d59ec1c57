// Package pool narrows pgx pools down to what vocabfab stores use,
// so that stores can be tested with mocks.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL. pgx.Tx and *pgxpool.Conn are Queryers.
type Queryer interface {
	// Exec sends a command without result rows.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// Query sends a command with result rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// QueryRow sends a command with a single result row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Tx is a transaction. Nested transactions are not supported.
type Tx interface {
	Queryer

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a connection borrowed from Pool. Release it after use.
type Conn interface {
	Queryer

	Release()
}

type Pool interface {
	// Begin a transaction on a connection of the pool.
	//
	// The connection returns to the pool when the transaction ends.
	Begin(ctx context.Context) (Tx, error)

	// Acquire a connection for queries out of transactions.
	Acquire(ctx context.Context) (Conn, error)
}

type pgxPool struct {
	base *pgxpool.Pool
}

func (p pgxPool) Begin(ctx context.Context) (Tx, error) {
	// pgx.Tx has more methods than Tx. Conversion is implicit.
	tx, err := p.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.base.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Wrap a pgx pool as Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return pgxPool{base: p}
}
