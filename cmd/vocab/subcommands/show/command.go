package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/opst/vocabfab/pkg/api/types/action"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	"github.com/youta-t/flarc"
)

const ARG_NAME = "NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show a vocabulary with its tags.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name or id of the vocabulary",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Print the vocabulary as JSON, in the same form as vocabulary_show action.
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

	lookup, err := client.ShowVocabulary(ctx, krest.KeyHolder, name)
	if err != nil {
		return err
	}
	vocab, ok := lookup.Get()
	if !ok {
		return fmt.Errorf("%w: vocabulary %s is not found", kerr.ErrMissing, name)
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	if err := enc.Encode(action.ComposeVocabulary(vocab)); err != nil {
		logger.Panicf("fail to dump found vocabulary")
	}
	return nil
}
