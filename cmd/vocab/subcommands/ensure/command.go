package ensure

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
	Policy string `flag:"policy" help:"how to treat an existing vocabulary: strict-noop or reconcile-terms"`
}

const (
	ARG_NAME = "NAME"
	ARG_TERM = "TERM"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Make a vocabulary with tags exist.",
		Flags{Policy: provision.StrictNoop.String()},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name of the vocabulary",
			},
			{
				Name: ARG_TERM, Repeatable: true,
				Help: "tags in the vocabulary",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Create a vocabulary with its tags, unless it exists.

An existing vocabulary is left as it is.
With "--policy reconcile-terms", missing tags are added to it.
Tags are never removed by {{ .Command }}.
`),
	)
}

func Task(
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

	args := cl.Args()
	spec := provision.Spec{Name: args[ARG_NAME][0], Terms: args[ARG_TERM]}

	outcome, err := provision.New(logger, provision.WithPolicy(policy)).
		Ensure(ctx, client, krest.KeyHolder, spec)
	if err != nil {
		return err
	}
	common.WriteResults(cl.Stdout(), []provision.Result{{Spec: spec, Outcome: outcome}})
	return nil
}
