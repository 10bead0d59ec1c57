package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opst/vocabfab/cmd/vocab/config/profiles"
	cerr "github.com/opst/vocabfab/cmd/vocab/errors"
	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/logger"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTaskWithCommonFlag picks CommonFlags out of positional values of flarc.
//
// With --verbose, a failed task logs details of its error.
func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag *CommonFlags
		rest := make([]any, 0, len(pos))
		for _, p := range pos {
			if cf, ok := p.(CommonFlags); ok {
				commonFlag = &cf
				continue
			}
			rest = append(rest, p)
		}
		if commonFlag == nil {
			return errors.New("programming error: common flags not found")
		}

		l := logger.New(cl.Stderr(), cl.Fullname())
		err := task(ctx, l, *commonFlag, cl, rest)
		if err != nil && commonFlag.Verbose {
			l.Println(cerr.VerboseOf(err))
		}
		return err
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	client krest.VocabClient,
	cl flarc.Commandline[T],
	params []any,
) error

// ClientFor creates a VocabClient with the profile chosen by cf.
func ClientFor(cf CommonFlags) (krest.VocabClient, error) {
	store, err := profiles.LoadProfileStore(cf.ProfileStore)
	if errors.Is(err, profiles.ErrProfileStoreNotFound) {
		return nil, fmt.Errorf(
			"%w: Please try `vocab init` first. Ask your admin to get a vocab profile", err,
		)
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to load profile store (%s)", err, cf.ProfileStore)
	}

	prof, ok := store[cf.Profile]
	if !ok {
		return nil, fmt.Errorf(
			"profile '%s' is not found in the profile store (%s)", cf.Profile, cf.ProfileStore,
		)
	}

	client, err := krest.NewClient(prof)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: your profile (%s in %s) can be broken. Remove it and try `vocab init` again",
			err, cf.Profile, cf.ProfileStore,
		)
	}
	return client, nil
}

// NewTask builds a flarc.Task which talks to vocabd through the profile.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		cf CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		client, err := ClientFor(cf)
		if err != nil {
			return err
		}
		return task(ctx, logger, client, cl, params)
	})
}
