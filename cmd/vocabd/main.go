package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/vocabfab/cmd/vocabd/bootstrap"
	"github.com/opst/vocabfab/cmd/vocabd/handlers"
	"github.com/opst/vocabfab/pkg/actions"
	"github.com/opst/vocabfab/pkg/api/types/action"
	"github.com/opst/vocabfab/pkg/auth/token"
	"github.com/opst/vocabfab/pkg/buildtime"
	"github.com/opst/vocabfab/pkg/configs/server"
	kdb "github.com/opst/vocabfab/pkg/domain/vocabfab/db"
	kpg "github.com/opst/vocabfab/pkg/domain/vocabfab/db/postgres"
	"github.com/opst/vocabfab/pkg/utils/echoutil"
	"github.com/opst/vocabfab/pkg/utils/filewatch"
	"github.com/opst/vocabfab/pkg/utils/retry"
)

func main() {
	configPath := flag.String("config", "", "path to server config file")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	logger := log.Default()
	logger.SetPrefix("[vocabd] ")
	logger.Printf("vocabd %s", buildtime.VersionString())

	if *configPath == "" {
		logger.Fatal("-config is required")
	}
	conf, err := server.Load(*configPath)
	if err != nil {
		logger.Fatalf("can not read configration: %s", err)
	}

	e := echo.New()
	e.HideBanner = true
	if err := echoutil.SetLevel(e, *loglevel); err != nil {
		logger.Println(err)
	}
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := connect(ctx, logger, conf)
	if err != nil {
		logger.Fatalf("can not connect to database: %s", err)
	}
	defer db.Close()

	// serve until the schema becomes outdated.
	sctx, scancel := db.Schema().Context(ctx)
	defer scancel()
	if sctx.Err() != nil {
		logger.Fatalf("database schema is not ready: %s", context.Cause(sctx))
	}

	signer, err := token.New([]byte(conf.APIToken.Secret), token.WithTTL(conf.APIToken.TTL))
	if err != nil {
		logger.Fatalf("can not use api token secret: %s", err)
	}
	acts := actions.New(db.Vocabulary(), conf.SiteActor())

	if _, err := bootstrap.Run(
		sctx, logger, conf.Bootstrap, acts, conf.SiteActor(), db.Keychain(),
	); err != nil {
		logger.Printf("some vocabularies are not provisioned: %s", err)
	}

	e.Any(
		action.Root+"/:action",
		handlers.ActionHandler(acts, handlers.TokenAuthenticator(signer, conf), "action"),
	)
	logger.Println("registred routes:")
	for _, r := range e.Routes() {
		logger.Println(r.Method, r.Path)
	}

	wctx, wcancel, err := filewatch.UntilModifyContext(sctx, *configPath)
	if err != nil {
		logger.Fatalf("can not watch configration: %s", err)
	}
	defer wcancel()
	context.AfterFunc(wctx, func() {
		logger.Printf("quit to restart server: %s", context.Cause(wctx))
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Printf("error on shutdown: %s", err)
		}
	})

	addr := ":" + strconv.Itoa(conf.Port)
	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		err = e.StartTLS(addr, cert, key)
	} else {
		err = e.Start(addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

// connect waits for the database to be ready.
func connect(ctx context.Context, logger *log.Logger, conf *server.Config) (kdb.VocabDatabase, error) {
	return retry.Blocking(
		ctx, retry.ExponentialBackoff(time.Second, 2, 30*time.Second),
		func() (kdb.VocabDatabase, error) {
			db, err := kpg.New(ctx, conf.DBUri, kpg.WithSchemaRepository(conf.SchemaRepository))
			if err != nil {
				logger.Printf("database is not ready: %s", err)
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return db, nil
		},
	)
}
