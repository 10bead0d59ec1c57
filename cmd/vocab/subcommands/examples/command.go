package examples

import (
	"context"
	"fmt"
	"log"

	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/opst/vocabfab/pkg/provision"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Policy string `flag:"policy" help:"how to treat existing vocabularies: strict-noop or reconcile-terms"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Create example vocabularies.",
		Flags{Policy: provision.StrictNoop.String()},
		flarc.Args{},
		common.NewTask(Task(provision.Examples)),
		flarc.WithDescription(`
Create example vocabularies and their tags, as the site user:

- example_vocab: vocab-tag-example-1, vocab-tag-example-2
- genre_vocab: jazz, soul
- composer_vocab: bach, beethoven, mozart

Vocabularies already there are left as they are.
With "--policy reconcile-terms", missing tags are added to them.

It is safe to run {{ .Command }} many times.
Your profile needs the api key of a sysadmin.
`),
	)
}

func Task(specs func() []provision.Spec) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.VocabClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		policy, err := provision.ParsePolicy(cl.Flags().Policy)
		if err != nil {
			return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
		}

		site, err := client.GetSiteUser(ctx, krest.KeyHolder)
		if err != nil {
			return fmt.Errorf("failed to get the site user: %w", err)
		}

		results, err := provision.New(logger, provision.WithPolicy(policy)).
			EnsureAll(ctx, client, site, specs())
		common.WriteResults(cl.Stdout(), results)
		if err != nil {
			return fmt.Errorf("some vocabularies are not provisioned: %w", err)
		}
		return nil
	}
}
