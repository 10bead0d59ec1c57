package postgres

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kpool "github.com/opst/vocabfab/pkg/conn/db/postgres/pool"
	kschema "github.com/opst/vocabfab/pkg/domain/schema/db"
	xe "github.com/opst/vocabfab/pkg/errors"
)

type pgSchema struct {
	pool       kpool.Pool
	repository string
}

var _ kschema.SchemaInterface = &pgSchema{}

// New creates a new Schema.
//
// # Args
//
// - repository: The path to the schema repository directory.
// It has subdirectories named with version numbers ("1", "2", ...),
// and each of them contains *.sql files applied in lexical order.
func New(pool kpool.Pool, repository string) kschema.SchemaInterface {
	return &pgSchema{pool: pool, repository: repository}
}

// Version is a set of sql files upgrading schema to the version.
type Version struct {
	Number int
	Root   string
}

// Files returns sql files in the version, in lexical order.
func (v Version) Files() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(v.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (v Version) apply(ctx context.Context, conn kpool.Queryer) error {
	files, err := v.Files()
	if err != nil {
		return xe.Wrap(err)
	}
	for _, f := range files {
		query, err := os.ReadFile(f)
		if err != nil {
			return xe.Wrap(err)
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("schema version %d: %s: %w", v.Number, filepath.Base(f), err)
		}
	}
	return nil
}

// Versions lists versions in the schema repository, sorted by version number.
//
// Entries not named with a number are ignored.
func Versions(repository string) ([]Version, error) {
	dir, err := os.ReadDir(repository)
	if err != nil {
		return nil, err
	}

	versions := make([]Version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		n, err := strconv.Atoi(entry.Name())
		if err != nil || n <= 0 {
			continue
		}
		versions = append(versions, Version{
			Number: n,
			Root:   filepath.Join(repository, entry.Name()),
		})
	}
	slices.SortFunc(versions, func(a, b Version) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return versions, nil
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, xe.Wrap(err)
	}
	defer conn.Release()
	return currentVersion(ctx, conn)
}

func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var version *int
	if err := conn.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable {
			return 0, nil
		}
		return -1, xe.Wrap(err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	versions, err := Versions(s.repository)
	if err != nil {
		return xe.Wrap(err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	current, err := currentVersion(ctx, tx)
	if err != nil {
		return err
	}

	for _, v := range versions {
		if v.Number <= current {
			continue
		}
		if err := v.apply(ctx, tx); err != nil {
			return err
		}
		note := fmt.Sprintf("recording schema version %d", v.Number)
		if _, err := tx.Exec(ctx, `delete from "schema_version"`); err != nil {
			return xe.WrapWithNote(note, err)
		}
		if _, err := tx.Exec(
			ctx, `insert into "schema_version" ("version") values ($1)`, v.Number,
		); err != nil {
			return xe.WrapWithNote(note, err)
		}
	}

	return xe.Wrap(tx.Commit(ctx))
}

// ErrOutdated is the cause of the context from Context
// when the database is older than the repository.
var ErrOutdated = errors.New("schema is outdated")

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	check := func() {
		versions, err := Versions(s.repository)
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}
		current, err := s.Version(cctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}
		if len(versions) == 0 {
			return
		}
		if latest := versions[len(versions)-1].Number; current < latest {
			can(fmt.Errorf(
				"%w: %d (in db) < %d (in repository)", ErrOutdated, current, latest,
			))
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.repository); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				can(fmt.Errorf("watching schema repository: %w", err))
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if filepath.Clean(s.repository) != filepath.Dir(ev.Name) {
					continue
				}
				check()
			}
		}
	}()

	check()
	return cctx, func() { can(nil) }
}

// Null returns a Schema which does nothing.
//
// It is used when no schema repository is given.
func Null() kschema.SchemaInterface {
	return nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Upgrade(context.Context) error {
	return errors.New("no schema repository available")
}

func (nullSchema) Version(context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}
