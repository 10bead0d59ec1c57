// Package bootstrap provisions vocabularies listed in the server config
// when vocabd starts.
package bootstrap

import (
	"context"
	"log"

	"github.com/opst/vocabfab/pkg/configs/server"
	"github.com/opst/vocabfab/pkg/domain"
	"github.com/opst/vocabfab/pkg/provision"
)

// Run ensures vocabularies in conf, acting as siteUser.
//
// When conf.Lock is true and locker is not nil, each vocabulary is
// provisioned while holding its lock, so vocabd replicas starting at once
// do not race.
//
// # Returns
//
// - []provision.Result: for each vocabulary in conf.
//
// - error: joined errors of failed vocabularies.
func Run(
	ctx context.Context,
	logger *log.Logger,
	conf server.Bootstrap,
	acts provision.Actions,
	siteUser domain.Actor,
	locker provision.Locker,
) ([]provision.Result, error) {
	if len(conf.Vocabularies) == 0 {
		return nil, nil
	}

	opts := []provision.Option{provision.WithPolicy(conf.Policy)}
	if conf.Lock && locker != nil {
		opts = append(opts, provision.WithLock(locker))
	}

	logger.Printf(
		"provisioning %d vocabularies (policy: %s, lock: %v)",
		len(conf.Vocabularies), conf.Policy, conf.Lock && locker != nil,
	)
	return provision.New(logger, opts...).EnsureAll(ctx, acts, siteUser, conf.Vocabularies)
}
