package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	kprof "github.com/opst/vocabfab/cmd/vocab/config/profiles"
	"github.com/opst/vocabfab/pkg/auth/token"
	"github.com/opst/vocabfab/pkg/configs/server"
	"github.com/opst/vocabfab/pkg/utils/try"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Flag struct {
	Config  string `flag:"config" help:"path to the vocabd config file."`
	ApiRoot string `flag:"api-root" help:"URL of the action API, like https://vocab.example.com/api/3/action ."`
	CA      string `flag:"ca" help:"path to the CA certificate (PEM) of vocabd. Optional."`
}

const ARG_USER = "USER"

// Issue makes a profile for the user, with a new api key.
func Issue(conf *server.Config, user string, apiRoot string, ca []byte) (*kprof.VocabProfile, error) {
	if _, ok := conf.Actor(user); !ok {
		return nil, fmt.Errorf("user %q is not in the config", user)
	}

	signer, err := token.New([]byte(conf.APIToken.Secret), token.WithTTL(conf.APIToken.TTL))
	if err != nil {
		return nil, err
	}
	key, err := signer.Issue(user)
	if err != nil {
		return nil, err
	}

	prof := &kprof.VocabProfile{ApiRoot: apiRoot, ApiKey: key}
	if len(ca) != 0 {
		prof.Cert.CA = base64.StdEncoding.EncodeToString(ca)
	}
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	return prof, nil
}

func main() {
	logger := log.Default()
	logger.SetPrefix("[token_issuer] ")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := try.To(flarc.NewCommand(
		"issue an api key of vocabd, as a vocab profile",
		Flag{
			Config:  os.Getenv("VOCABD_CONFIG"),
			ApiRoot: "http://localhost:8080/api/3/action",
		},
		flarc.Args{
			{Name: ARG_USER, Required: true, Help: "user name in the vocabd config."},
		},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()
			if flags.Config == "" {
				return fmt.Errorf("%w: --config (or VOCABD_CONFIG) is required", flarc.ErrUsage)
			}
			conf, err := server.Load(flags.Config)
			if err != nil {
				return err
			}

			var ca []byte
			if flags.CA != "" {
				ca, err = os.ReadFile(flags.CA)
				if err != nil {
					return err
				}
			}

			prof, err := Issue(conf, c.Args()[ARG_USER][0], flags.ApiRoot, ca)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.Stdout())
			defer enc.Close()
			return enc.Encode(prof)
		},
		flarc.WithDescription(`
Issue an api key for USER, and print a profile file for "vocab init".

    token_issuer --config /etc/vocabd/config.yaml admin > admin.profile
`),
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd, flarc.WithHelp(true)))
}
