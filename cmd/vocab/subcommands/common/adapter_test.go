package common_test

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"testing"

	prof "github.com/opst/vocabfab/cmd/vocab/config/profiles"
	cerr "github.com/opst/vocabfab/cmd/vocab/errors"
	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/internal/commandline"
	"github.com/youta-t/flarc"
)

func TestNewTaskWithCommonFlag(t *testing.T) {
	t.Run("it passes common flags apart from other params", func(t *testing.T) {
		cf := common.CommonFlags{Profile: "p", ProfileStore: "/store"}
		called := false
		testee := common.NewTaskWithCommonFlag(func(
			ctx context.Context, logger *log.Logger, got common.CommonFlags,
			cl flarc.Commandline[struct{}], params []any,
		) error {
			called = true
			if got != cf {
				t.Errorf("common flags: (actual, expected) = (%+v, %+v)", got, cf)
			}
			if len(params) != 1 || params[0] != "other" {
				t.Errorf("params: %v", params)
			}
			if p := logger.Prefix(); p != "[vocab test] " {
				t.Errorf("logger prefix: %q", p)
			}
			return nil
		})

		err := testee(
			context.Background(),
			commandline.New("vocab test", struct{}{}, nil),
			[]any{"other", cf},
		)
		if err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("task is not called")
		}
	})

	t.Run("with --verbose, it logs details of the error", func(t *testing.T) {
		testee := common.NewTaskWithCommonFlag(func(
			context.Context, *log.Logger, common.CommonFlags, flarc.Commandline[struct{}], []any,
		) error {
			return cerr.New("summary", errors.New("fake cause")).WithHint("hint")
		})
		cl := commandline.New("vocab test", struct{}{}, nil)
		err := testee(context.Background(), cl, []any{common.CommonFlags{Verbose: true}})
		if err == nil {
			t.Fatal("expected error, but got nil")
		}
		if logs := cl.Err.String(); !strings.Contains(logs, "(hint)\ncaused by: fake cause") {
			t.Errorf("log: %q", logs)
		}
	})

	t.Run("without common flags, it fails", func(t *testing.T) {
		testee := common.NewTaskWithCommonFlag(func(
			context.Context, *log.Logger, common.CommonFlags, flarc.Commandline[struct{}], []any,
		) error {
			t.Error("task should not be called")
			return nil
		})
		err := testee(
			context.Background(),
			commandline.New("vocab test", struct{}{}, nil),
			[]any{},
		)
		if err == nil {
			t.Error("expected error, but got nil")
		}
	})
}

func TestNewTask(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "profile")
	if err := (prof.ProfileStore{
		"known": {ApiRoot: "http://localhost:8080/api/3/action", ApiKey: "key"},
	}).Save(store); err != nil {
		t.Fatal(err)
	}

	run := func(cf common.CommonFlags) (bool, error) {
		called := false
		testee := common.NewTask(func(
			ctx context.Context, logger *log.Logger, client krest.VocabClient,
			cl flarc.Commandline[struct{}], params []any,
		) error {
			called = client != nil
			return nil
		})
		err := testee(
			context.Background(),
			commandline.New("vocab test", struct{}{}, nil),
			[]any{cf},
		)
		return called, err
	}

	t.Run("with a known profile, it creates a client", func(t *testing.T) {
		called, err := run(common.CommonFlags{Profile: "known", ProfileStore: store})
		if err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("task is not called with a client")
		}
	})

	t.Run("with an unknown profile, it fails", func(t *testing.T) {
		called, err := run(common.CommonFlags{Profile: "unknown", ProfileStore: store})
		if err == nil || called {
			t.Errorf("(called, err) = (%v, %v)", called, err)
		}
	})

	t.Run("without profile store, it fails", func(t *testing.T) {
		called, err := run(common.CommonFlags{Profile: "known", ProfileStore: filepath.Join(dir, "nothing")})
		if !errors.Is(err, prof.ErrProfileStoreNotFound) || called {
			t.Errorf("(called, err) = (%v, %v)", called, err)
		}
	})
}
