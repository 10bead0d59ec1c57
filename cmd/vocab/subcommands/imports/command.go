package imports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cheggaaa/pb/v3"
	krest "github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	"github.com/opst/vocabfab/pkg/provision"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Flags struct {
	Policy string `flag:"policy" help:"overrides policy in the manifest: strict-noop or reconcile-terms"`
}

const ARG_FILE = "FILE"

// Manifest is a file listing Vocabularies to be provisioned.
//
//	policy: reconcile-terms
//	vocabularies:
//	  - name: genre_vocab
//	    terms: [jazz, soul]
type Manifest struct {
	Policy       provision.Policy `yaml:"policy"`
	Vocabularies []provision.Spec `yaml:"vocabularies"`
}

// ReadManifest parses a Manifest.
//
// Vocabulary names should be unique in a Manifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	m := Manifest{Policy: provision.StrictNoop}
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, fmt.Errorf("%w: manifest is empty", kerr.ErrInvalid)
		}
		return Manifest{}, fmt.Errorf("%w: manifest: %w", kerr.ErrInvalid, err)
	}

	names := map[string]struct{}{}
	for _, v := range m.Vocabularies {
		if _, ok := names[v.Name]; ok {
			return Manifest{}, fmt.Errorf("%w: manifest: vocabulary %q is duplicated", kerr.ErrInvalid, v.Name)
		}
		names[v.Name] = struct{}{}
	}
	return m, nil
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Make vocabularies in a manifest file exist.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_FILE, Required: true,
				Help: `manifest file. "-" means stdin.`,
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Provision each vocabulary in the manifest, like:

    policy: strict-noop  # or reconcile-terms
    vocabularies:
      - name: genre_vocab
        terms: [jazz, soul]
      - name: composer_vocab
        terms: [bach, beethoven, mozart]

A failure on a vocabulary does not stop others.
{{ .Command }} fails when any of them failed.
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
	file := cl.Args()[ARG_FILE][0]

	var manifest Manifest
	if file == "-" {
		m, err := ReadManifest(cl.Stdin())
		if err != nil {
			return err
		}
		manifest = m
	} else {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open manifest: %w", err)
		}
		defer f.Close()
		m, err := ReadManifest(f)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		manifest = m
	}

	policy := manifest.Policy
	if p := cl.Flags().Policy; p != "" {
		parsed, err := provision.ParsePolicy(p)
		if err != nil {
			return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
		}
		policy = parsed
	}

	total := len(manifest.Vocabularies)
	if total == 0 {
		logger.Println("no vocabularies in the manifest.")
		return nil
	}

	pr := provision.New(logger, provision.WithPolicy(policy))

	bar := pb.New(total)
	bar.SetWriter(cl.Stderr())
	if err := bar.Err(); err != nil {
		return err
	}
	bar.Start()

	results := make([]provision.Result, 0, total)
	errs := []error{}
	for _, spec := range manifest.Vocabularies {
		bar.Set("prefix", spec.Name+":")
		outcome, err := pr.Ensure(ctx, client, krest.KeyHolder, spec)
		results = append(results, provision.Result{Spec: spec, Outcome: outcome, Err: err})
		if err != nil {
			logger.Printf("failed to provision vocabulary %q: %v", spec.Name, err)
			errs = append(errs, fmt.Errorf("vocabulary %q: %w", spec.Name, err))
		}
		bar.Increment()
	}
	bar.Set("prefix", "")
	bar.Finish()

	common.WriteResults(cl.Stdout(), results)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%d of %d vocabularies are not provisioned: %w", len(errs), total, err)
	}
	return nil
}
