// Package mock provides in-memory stand-ins of kpool interfaces.
//
// They do not talk to any database. Tests set Impl functions to
// answer queries and inspect Calls afterwards.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opst/vocabfab/pkg/conn/db/postgres/pool"
)

// SQLCall records a query sent to a mock.
type SQLCall struct {
	SQL  string
	Args []interface{}
}

// Row is a pgx.Row which is scanned by a function.
type Row func(dest ...interface{}) error

func (r Row) Scan(dest ...interface{}) error {
	return r(dest...)
}

// ErrRow returns a Row which always fails with err.
func ErrRow(err error) Row {
	return func(...interface{}) error { return err }
}

type Queryer struct {
	mux  sync.Mutex
	Impl struct {
		Exec     func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
		Query    func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
		QueryRow func(ctx context.Context, sql string, args ...interface{}) pgx.Row
	}
	Calls struct {
		Exec     []SQLCall
		Query    []SQLCall
		QueryRow []SQLCall
	}
}

var errNotImplemented = errors.New("[mock] not implemented")

func (q *Queryer) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	q.mux.Lock()
	q.Calls.Exec = append(q.Calls.Exec, SQLCall{SQL: sql, Args: args})
	q.mux.Unlock()
	if q.Impl.Exec == nil {
		return pgconn.CommandTag(""), nil
	}
	return q.Impl.Exec(ctx, sql, args...)
}

func (q *Queryer) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	q.mux.Lock()
	q.Calls.Query = append(q.Calls.Query, SQLCall{SQL: sql, Args: args})
	q.mux.Unlock()
	if q.Impl.Query == nil {
		return nil, errNotImplemented
	}
	return q.Impl.Query(ctx, sql, args...)
}

func (q *Queryer) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	q.mux.Lock()
	q.Calls.QueryRow = append(q.Calls.QueryRow, SQLCall{SQL: sql, Args: args})
	q.mux.Unlock()
	if q.Impl.QueryRow == nil {
		return ErrRow(errNotImplemented)
	}
	return q.Impl.QueryRow(ctx, sql, args...)
}

// Tx is a mock of kpool.Tx.
type Tx struct {
	*Queryer
	Committed  int
	RolledBack int
	CommitErr  error
	done       bool
}

var _ kpool.Tx = &Tx{}

func NewTx(q *Queryer) *Tx {
	return &Tx{Queryer: q}
}

func (tx *Tx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.Committed += 1
	return tx.CommitErr
}

func (tx *Tx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.RolledBack += 1
	return nil
}

type Conn struct {
	*Queryer
	Released int
}

var _ kpool.Conn = &Conn{}

func (c *Conn) Release() {
	c.Released += 1
}

// Pool is a mock of kpool.Pool.
//
// Every Acquire and Begin shares the same Queryer.
type Pool struct {
	Queryer *Queryer

	mux   sync.Mutex
	Txs   []*Tx
	Conns []*Conn
}

var _ kpool.Pool = &Pool{}

func NewPool() *Pool {
	return &Pool{Queryer: &Queryer{}}
}

func (p *Pool) Begin(context.Context) (kpool.Tx, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	tx := NewTx(p.Queryer)
	p.Txs = append(p.Txs, tx)
	return tx, nil
}

func (p *Pool) Acquire(context.Context) (kpool.Conn, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	c := &Conn{Queryer: p.Queryer}
	p.Conns = append(p.Conns, c)
	return c, nil
}
