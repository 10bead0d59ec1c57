package clean

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	"github.com/opst/vocabfab/pkg/provision"
	"github.com/youta-t/flarc"
)

const ARG_NAME = "NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove vocabularies with their tags.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_NAME, Repeatable: true,
				Help: "name or id of vocabularies. default: the example vocabularies",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Remove vocabularies. Tags in them are removed first.

Without NAME, {{ .Command }} removes vocabularies made by create-example-vocabs.
Vocabularies not found are skipped.
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
	names := cl.Args()[ARG_NAME]
	if len(names) == 0 {
		for _, s := range provision.Examples() {
			names = append(names, s.Name)
		}
	}

	errs := []error{}
	for _, name := range names {
		if err := remove(ctx, logger, client, cl.Stdout(), name); err != nil {
			logger.Printf("failed to remove vocabulary %q: %s", name, err)
			fmt.Fprintf(cl.Stdout(), "%s\tfailed\t%s\n", name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func remove(ctx context.Context, logger *log.Logger, client krest.VocabClient, out io.Writer, name string) error {
	lookup, err := client.ShowVocabulary(ctx, krest.KeyHolder, name)
	if err != nil {
		return fmt.Errorf("looking up vocabulary %q: %w", name, err)
	}
	vocab, ok := lookup.Get()
	if !ok {
		logger.Printf("vocabulary %q is not found. skipping.", name)
		fmt.Fprintf(out, "%s\tnot found\n", name)
		return nil
	}

	for _, t := range vocab.Terms {
		logger.Printf("removing term %q from vocabulary %q", t.Name, vocab.Name)
		err := client.DeleteTerm(ctx, krest.KeyHolder, vocab.Id, t.Id)
		if err != nil && !errors.Is(err, kerr.ErrMissing) {
			return fmt.Errorf("removing term %q from vocabulary %q: %w", t.Name, vocab.Name, err)
		}
	}

	logger.Printf("removing vocabulary %q", vocab.Name)
	if err := client.DeleteVocabulary(ctx, krest.KeyHolder, vocab.Id); err != nil && !errors.Is(err, kerr.ErrMissing) {
		return fmt.Errorf("removing vocabulary %q: %w", vocab.Name, err)
	}
	fmt.Fprintf(out, "%s\tremoved\t%d term(s)\n", vocab.Name, len(vocab.Terms))
	return nil
}
