package tags

import (
	"context"
	"fmt"
	"log"

	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/youta-t/flarc"
)

const ARG_NAME = "NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List tags in a vocabulary.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name or id of the vocabulary",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Print names of tags in the vocabulary, one per line.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	client krest.VocabClient,
	cl flarc.Commandline[struct{}],
	params []any,
) error {
	name := cl.Args()[ARG_NAME][0]
	terms, err := client.ListTerms(ctx, krest.KeyHolder, name)
	if err != nil {
		return fmt.Errorf("vocabulary %s: %w", name, err)
	}
	for _, t := range terms {
		fmt.Fprintln(cl.Stdout(), t.Name)
	}
	return nil
}
