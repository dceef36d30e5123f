package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/clients/external"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/config"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	characterorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/character"
	diceorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/dice"
	feedbackorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/feedback"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/clock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
	redisclient "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/redis"
	characterrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character"
	feedbackrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// app holds the configuration and lazily built services of one invocation
type app struct {
	configPath string
	v          *viper.Viper
	cfg        config.Config
	tables     *rules.Tables

	store   records.Store
	catalog *external.CachedCatalog
	closers []func() error
}

func (a *app) recordStore(ctx context.Context) (records.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisclient.NewClient(a.cfg.Store.Redis.Addr, &redisclient.Options{
			Password: a.cfg.Store.Redis.Password,
			DB:       a.cfg.Store.Redis.DB,
		})
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create redis client")
		}
		a.closers = append(a.closers, client.Close)

		store, err := records.NewRedis(&records.RedisConfig{
			Client: client,
			Clock:  clock.New(),
			IDGen:  idgen.NewUUID(""),
		})
		if err != nil {
			return nil, err
		}
		a.store = store
	case config.BackendSQLite:
		store, err := records.OpenSQLite(ctx, &records.SQLiteConfig{
			Path:  a.cfg.Store.SQLite.Path,
			Clock: clock.New(),
			IDGen: idgen.NewUUID(""),
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.store = store
	default:
		return nil, errors.InvalidArgumentf("unknown store backend %q", a.cfg.Store.Backend)
	}

	return a.store, nil
}

func (a *app) characterService(ctx context.Context) (characterorch.Service, error) {
	store, err := a.recordStore(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := characterrepo.New(&characterrepo.Config{Store: store})
	if err != nil {
		return nil, err
	}
	return characterorch.New(&characterorch.Config{
		CharacterRepo: repo,
		Tables:        a.tables,
	})
}

func (a *app) feedbackService(ctx context.Context) (feedbackorch.Service, error) {
	store, err := a.recordStore(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := feedbackrepo.New(&feedbackrepo.Config{Store: store})
	if err != nil {
		return nil, err
	}
	return feedbackorch.New(&feedbackorch.Config{
		FeedbackRepo: repo,
		VoterIDs:     idgen.NewUUID("voter"),
	})
}

func (a *app) diceService() (diceorch.Service, error) {
	return diceorch.NewOrchestrator(&diceorch.Config{
		IDGenerator: idgen.NewUUID("roll"),
	})
}

func (a *app) catalogClient() (*external.CachedCatalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	client, err := external.New(&external.Config{
		BaseURL:     a.cfg.Catalog.BaseURL,
		HTTPTimeout: a.cfg.Catalog.HTTPTimeout,
		CacheTTL:    a.cfg.Catalog.CacheTTL,
		Tables:      a.tables,
	})
	if err != nil {
		return nil, err
	}
	a.catalog = external.NewCached(client)
	return a.catalog, nil
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = errors.Wrap(err, "failed to close store")
		}
	}
	a.closers = nil
	a.store = nil
	return first
}
