package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/opst/vocabfab/pkg/conn/db/postgres/pool/testenv"
	"github.com/opst/vocabfab/pkg/conn/db/postgres/scanner"
	"github.com/opst/vocabfab/pkg/utils/cmp"
	"github.com/opst/vocabfab/pkg/utils/try"

	kpgkc "github.com/opst/vocabfab/pkg/domain/keychain/db/postgres"
)

func TestKeychain_Lock(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("When there are no records, Lock creates new record and take lock", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		keychainName := "key-1"

		testee := kpgkc.New(pgpool)
		err := testee.Lock(ctx, keychainName, func(ctx context.Context) error {
			conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
			defer conn.Release()

			// the record is inserted by Lock, so it is invisible before Commit.
			names := try.To(scanner.New[string]().QueryAll(
				ctx, conn, `select "name" from "keychain" for update skip locked`,
			)).OrFatal(t)
			if len(names) != 0 {
				t.Errorf("unexpected unlocked names: %v", names)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		// the record remains after the critical section, and not locked
		names := try.To(scanner.New[string]().QueryAll(
			ctx, conn, `select "name" from "keychain" for update skip locked`,
		)).OrFatal(t)
		if !cmp.SliceEq(names, []string{keychainName}) {
			t.Errorf("unexpected names: %v", names)
		}
	})

	t.Run("When the critical section fails, Lock returns its error and does not create record", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgkc.New(pgpool)
		expectedError := errors.New("fake")
		err := testee.Lock(ctx, "key-1", func(ctx context.Context) error {
			return expectedError
		})
		if !errors.Is(err, expectedError) {
			t.Fatalf("unexpected error: %v", err)
		}

		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		names := try.To(scanner.New[string]().QueryAll(
			ctx, conn, `select "name" from "keychain"`,
		)).OrFatal(t)
		if len(names) != 0 {
			t.Errorf("unexpected names: %v", names)
		}
	})

	t.Run("When there is a record, Lock takes lock on it", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		{
			conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
			try.To(conn.Exec(ctx, `insert into "keychain" ("name") values ('key-1'), ('key-2')`)).OrFatal(t)
			conn.Release()
		}

		testee := kpgkc.New(pgpool)
		err := testee.Lock(ctx, "key-1", func(ctx context.Context) error {
			conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
			defer conn.Release()

			unlocked := try.To(scanner.New[string]().QueryAll(
				ctx, conn, `select "name" from "keychain" for update skip locked`,
			)).OrFatal(t)
			if !cmp.SliceEq(unlocked, []string{"key-2"}) {
				t.Errorf("unexpected unlocked names: %v", unlocked)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	t.Run("Critical sections with the same name do not overlap", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		testee := kpgkc.New(pgpool)

		mux := sync.Mutex{}
		inside := 0
		overlapped := false

		wg := sync.WaitGroup{}
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := testee.Lock(ctx, "genre_vocab", func(context.Context) error {
					mux.Lock()
					inside += 1
					if 1 < inside {
						overlapped = true
					}
					mux.Unlock()

					time.Sleep(50 * time.Millisecond)

					mux.Lock()
					inside -= 1
					mux.Unlock()
					return nil
				})
				if err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		if overlapped {
			t.Error("critical sections overlapped")
		}
	})
}
