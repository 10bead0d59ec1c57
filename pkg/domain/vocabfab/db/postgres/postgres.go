package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/opst/vocabfab/pkg/conn/db/postgres/pool"
	kkeychain "github.com/opst/vocabfab/pkg/domain/keychain/db"
	kpgkeychain "github.com/opst/vocabfab/pkg/domain/keychain/db/postgres"
	kschema "github.com/opst/vocabfab/pkg/domain/schema/db"
	kpgschema "github.com/opst/vocabfab/pkg/domain/schema/db/postgres"
	dbInterface "github.com/opst/vocabfab/pkg/domain/vocabfab/db"
	kvocab "github.com/opst/vocabfab/pkg/domain/vocabulary/db"
	kpgvocab "github.com/opst/vocabfab/pkg/domain/vocabulary/db/postgres"
	xe "github.com/opst/vocabfab/pkg/errors"
)

type vocabDBPostgres struct {
	pool       *pgxpool.Pool
	vocabulary kvocab.VocabularyInterface
	keychain   kkeychain.KeychainInterface
	schema     kschema.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// New connects to the database at url.
//
// Without WithSchemaRepository, Schema() does nothing.
func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.VocabDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return NewWithPool(pool, options...), nil
}

// NewWithPool builds the database over an established pool.
//
// The pool is closed by Close.
func NewWithPool(pool *pgxpool.Pool, options ...Option) dbInterface.VocabDatabase {
	c := &Config{}
	for _, option := range options {
		c = option(c)
	}

	p := kpool.Wrap(pool)
	var schema kschema.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &vocabDBPostgres{
		pool:       pool,
		vocabulary: kpgvocab.New(p),
		keychain:   kpgkeychain.New(p),
		schema:     schema,
	}
}

func (k *vocabDBPostgres) Vocabulary() kvocab.VocabularyInterface {
	return k.vocabulary
}

func (k *vocabDBPostgres) Schema() kschema.SchemaInterface {
	return k.schema
}

func (k *vocabDBPostgres) Keychain() kkeychain.KeychainInterface {
	return k.keychain
}

func (k *vocabDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
