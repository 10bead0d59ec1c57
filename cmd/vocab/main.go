package main

import (
	"context"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/opst/vocabfab/cmd/vocab/subcommands/clean"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/ensure"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/examples"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/imports"
	subinit "github.com/opst/vocabfab/cmd/vocab/subcommands/init"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/logger"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/show"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/tags"
	subver "github.com/opst/vocabfab/cmd/vocab/subcommands/version"
	"github.com/opst/vocabfab/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.New(os.Stderr, name)

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)

	vocab := try.To(newCommand(cf)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, vocab, flarc.WithHelp(true)))
}

// aliases are other names of subcommands.
//
// "create-example-vocab" is the name of the command in the older plugin.
var aliases = map[string]string{
	"create-example-vocab": "create-example-vocabs",
}

func newCommand(cf common.CommonFlags) (flarc.Command, error) {
	subcommands := []struct {
		name string
		new  func() (flarc.Command, error)
	}{
		{name: "init", new: subinit.New},
		{name: "create-example-vocabs", new: examples.New},
		{name: "ensure", new: ensure.New},
		{name: "import", new: imports.New},
		{name: "show", new: show.New},
		{name: "tags", new: tags.New},
		{name: "clean", new: clean.New},
		{name: "version", new: subver.New},
	}

	opts := []flarc.CommandGroupOption{}
	for _, sc := range subcommands {
		cmd, err := sc.new()
		if err != nil {
			return nil, err
		}
		opts = append(opts, flarc.WithSubcommand(sc.name, cmd))
		for alias, name := range aliases {
			if name == sc.name {
				opts = append(opts, flarc.WithSubcommand(alias, cmd))
			}
		}
	}

	return flarc.NewCommandGroup(
		"Vocabulary provisioning for CKAN-style action API", cf, opts...,
	)
}
