package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opst/vocabfab/pkg/conn/db/postgres/pool"
	"github.com/opst/vocabfab/pkg/conn/db/postgres/scanner"
	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	kpgerr "github.com/opst/vocabfab/pkg/domain/errors/dberrors/postgres"
	kdb "github.com/opst/vocabfab/pkg/domain/vocabulary/db"
	xe "github.com/opst/vocabfab/pkg/errors"
)

type pgVocabulary struct {
	pool  kpool.Pool
	newId func() string
}

type Option func(*pgVocabulary) *pgVocabulary

// WithIdGenerator replaces the generator of ids for new Vocabularies and Terms.
//
// Ids should be UUIDs. By default, uuid.NewString is used.
func WithIdGenerator(gen func() string) Option {
	return func(p *pgVocabulary) *pgVocabulary {
		p.newId = gen
		return p
	}
}

func New(pool kpool.Pool, options ...Option) kdb.VocabularyInterface {
	p := &pgVocabulary{pool: pool, newId: uuid.NewString}
	for _, o := range options {
		p = o(p)
	}
	return p
}

type vocabularyRow struct {
	Id   string `sql:"vocabulary_id"`
	Name string
}

const (
	selectVocabulary = `select "vocabulary_id"::text as "vocabulary_id", "name" from "vocabulary"`
	selectTerm       = `select "term_id"::text as "id", "name", "vocabulary_id"::text as "vocabulary_id" from "term"`
)

func (m *pgVocabulary) Find(ctx context.Context, nameOrId string) (domain.Lookup, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return domain.Absent(), xe.Wrap(err)
	}
	defer conn.Release()

	return find(ctx, conn, nameOrId)
}

func find(ctx context.Context, conn kpool.Queryer, nameOrId string) (domain.Lookup, error) {
	var rows []vocabularyRow
	var err error
	if _, perr := uuid.Parse(nameOrId); perr == nil {
		rows, err = scanner.New[vocabularyRow]().QueryAll(
			ctx, conn,
			selectVocabulary+` where "vocabulary_id" = $1::uuid or "name" = $2
			order by ("vocabulary_id" = $1::uuid) desc limit 1`,
			nameOrId, nameOrId,
		)
	} else {
		rows, err = scanner.New[vocabularyRow]().QueryAll(
			ctx, conn, selectVocabulary+` where "name" = $1`, nameOrId,
		)
	}
	if err != nil {
		return domain.Absent(), xe.Wrap(err)
	}
	if len(rows) == 0 {
		return domain.Absent(), nil
	}

	row := rows[0]
	terms, err := terms(ctx, conn, row.Id)
	if err != nil {
		return domain.Absent(), err
	}
	return domain.Found(domain.Vocabulary{Id: row.Id, Name: row.Name, Terms: terms}), nil
}

func terms(ctx context.Context, conn kpool.Queryer, vocabularyId string) ([]domain.Term, error) {
	ts, err := scanner.New[domain.Term]().QueryAll(
		ctx, conn,
		selectTerm+` where "vocabulary_id" = $1::uuid order by "seq"`,
		vocabularyId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return ts, nil
}

func (m *pgVocabulary) List(ctx context.Context) ([]domain.Vocabulary, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	rows, err := scanner.New[vocabularyRow]().QueryAll(
		ctx, conn, selectVocabulary+` order by "name"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ts, err := scanner.New[domain.Term]().QueryAll(
		ctx, conn, selectTerm+` order by "seq"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	termsOf := map[string][]domain.Term{}
	for _, t := range ts {
		termsOf[t.VocabularyId] = append(termsOf[t.VocabularyId], t)
	}

	vocabs := make([]domain.Vocabulary, 0, len(rows))
	for _, r := range rows {
		vocabs = append(vocabs, domain.Vocabulary{
			Id: r.Id, Name: r.Name, Terms: termsOf[r.Id],
		})
	}
	return vocabs, nil
}

func (m *pgVocabulary) Create(ctx context.Context, name string, terms []string) (domain.Vocabulary, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return domain.Vocabulary{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	vocab := domain.Vocabulary{Id: m.newId(), Name: name, Terms: []domain.Term{}}
	if _, err := tx.Exec(
		ctx,
		`insert into "vocabulary" ("vocabulary_id", "name") values ($1, $2)`,
		vocab.Id, name,
	); err != nil {
		return domain.Vocabulary{}, kpgerr.Classify(err, name)
	}

	for _, t := range terms {
		term, err := m.insertTerm(ctx, tx, vocab.Id, t)
		if err != nil {
			return domain.Vocabulary{}, err
		}
		vocab.Terms = append(vocab.Terms, term)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Vocabulary{}, xe.Wrap(err)
	}
	return vocab, nil
}

func (m *pgVocabulary) insertTerm(ctx context.Context, conn kpool.Queryer, vocabularyId string, name string) (domain.Term, error) {
	term := domain.Term{Id: m.newId(), Name: name, VocabularyId: vocabularyId}
	if _, err := conn.Exec(
		ctx,
		`insert into "term" ("term_id", "vocabulary_id", "name") values ($1, $2, $3)`,
		term.Id, vocabularyId, name,
	); err != nil {
		err = kpgerr.Classify(err, name)
		if errors.Is(err, kerr.ErrMissing) {
			return domain.Term{}, kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
		}
		return domain.Term{}, err
	}
	return term, nil
}

func (m *pgVocabulary) CreateTerm(ctx context.Context, vocabularyId string, name string) (domain.Term, error) {
	if _, err := uuid.Parse(vocabularyId); err != nil {
		return domain.Term{}, kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return domain.Term{}, xe.Wrap(err)
	}
	defer conn.Release()

	return m.insertTerm(ctx, conn, vocabularyId, name)
}

func (m *pgVocabulary) Terms(ctx context.Context, vocabularyId string) ([]domain.Term, error) {
	if _, err := uuid.Parse(vocabularyId); err != nil {
		return nil, kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	var found string
	if err := conn.QueryRow(
		ctx,
		`select "vocabulary_id"::text from "vocabulary" where "vocabulary_id" = $1::uuid`,
		vocabularyId,
	).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
		}
		return nil, xe.Wrap(err)
	}

	return terms(ctx, conn, vocabularyId)
}

func (m *pgVocabulary) DeleteTerm(ctx context.Context, vocabularyId string, nameOrId string) error {
	if _, err := uuid.Parse(vocabularyId); err != nil {
		return kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	ctag, err := conn.Exec(
		ctx,
		`delete from "term"
		where "vocabulary_id" = $1::uuid and ("name" = $2 or "term_id"::text = $2)`,
		vocabularyId, nameOrId,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return kpgerr.Missing{Table: "term", Identity: nameOrId}
	}
	return nil
}

func (m *pgVocabulary) Delete(ctx context.Context, vocabularyId string) error {
	if _, err := uuid.Parse(vocabularyId); err != nil {
		return kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	ctag, err := conn.Exec(
		ctx, `delete from "vocabulary" where "vocabulary_id" = $1::uuid`, vocabularyId,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return kpgerr.Missing{Table: "vocabulary", Identity: vocabularyId}
	}
	return nil
}
