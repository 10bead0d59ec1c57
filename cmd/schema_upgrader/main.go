package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	kpg "github.com/opst/vocabfab/pkg/domain/vocabfab/db/postgres"
	kio "github.com/opst/vocabfab/pkg/io"
	"github.com/opst/vocabfab/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema string `flag:"schema" help:"The path to the schema repository directory."`
}

const ARG_SCHEMA_DEST = "SCHEMA_DEST"

func main() {
	logger := log.Default()
	logger.SetPrefix("[schema_upgrader] ")
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		if p, err := strconv.Atoi(sp); err == nil {
			port = p
		}
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader for vocabd",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),
			Schema:   os.Getenv("VOCABFAB_SCHEMA"),
		},
		flarc.Args{
			{
				Name: ARG_SCHEMA_DEST, Help: "The schema files are copied to this directory, for vocabd.",
				Required: false, Repeatable: false,
			},
		},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()
			if flags.Schema == "" {
				return fmt.Errorf("%w: --schema (or VOCABFAB_SCHEMA) is required", flarc.ErrUsage)
			}

			if dest := c.Args()[ARG_SCHEMA_DEST]; len(dest) != 0 {
				logger.Printf("copying schema files to %s...", dest[0])
				if err := kio.DirCopy(flags.Schema, dest[0]); err != nil {
					return err
				}
			}

			uri := url.URL{
				Scheme: "postgres",
				User:   url.UserPassword(flags.User, flags.Password),
				Host:   fmt.Sprintf("%s:%d", flags.Host, flags.Port),
				Path:   "/" + flags.Database,
			}
			db, err := kpg.New(ctx, uri.String(), kpg.WithSchemaRepository(flags.Schema))
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			if err := db.Schema().Upgrade(ctx); err != nil {
				return err
			}
			after, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			logger.Printf("schema version: %d -> %d", before, after)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd, flarc.WithHelp(true)))
}
