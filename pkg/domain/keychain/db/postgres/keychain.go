package postgres

import (
	"context"

	kpool "github.com/opst/vocabfab/pkg/conn/db/postgres/pool"
	kdbkeychain "github.com/opst/vocabfab/pkg/domain/keychain/db"
	xe "github.com/opst/vocabfab/pkg/errors"
)

type pgKeychain struct {
	pool kpool.Pool
}

// New returns a keychain made of rows of the "keychain" table.
//
// A lock is a row lock taken by "select ... for update".
// Rows are created on demand and never removed.
func New(pool kpool.Pool) kdbkeychain.KeychainInterface {
	return &pgKeychain{pool: pool}
}

func (kc *pgKeychain) Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error {
	tx, err := kc.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	// A concurrent inserter of the same name makes us wait here until it ends,
	// then "do nothing".
	if _, err := tx.Exec(
		ctx,
		`insert into "keychain" ("name") values ($1) on conflict ("name") do nothing`,
		name,
	); err != nil {
		return xe.Wrap(err)
	}

	var locked string
	if err := tx.QueryRow(
		ctx,
		`select "name" from "keychain" where "name" = $1 for update`,
		name,
	).Scan(&locked); err != nil {
		return xe.Wrap(err)
	}

	if err := criticalSection(ctx); err != nil {
		return err
	}
	return xe.Wrap(tx.Commit(ctx))
}
