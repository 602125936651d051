package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tnicklin/timebudget/clock"
	"github.com/tnicklin/timebudget/config"
	"github.com/tnicklin/timebudget/logger"
	"github.com/tnicklin/timebudget/store"
)

// app carries the wired dependencies shared by the subcommands.
type app struct {
	cfg    *config.AppConfig
	logger logger.Logger
	wall   clock.Clock
	ntp    *clock.NTPClock
	store  *store.SQLiteStore
}

func buildApp(ctx context.Context) (*app, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadWithDefaults(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", flagConfig, err)
		}
	} else {
		cfg, err = config.LoadWithDefaults("config/config.yaml")
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: appLogger,
		wall:   clock.System(),
	}

	if cfg.Clock.NTP {
		a.ntp = clock.NewNTP(
			clock.WithServer(cfg.Clock.NTPServer),
			clock.WithInterval(cfg.Clock.NTPInterval),
			clock.WithLogger(appLogger),
		)
		if err = a.ntp.Start(ctx); err != nil {
			return nil, fmt.Errorf("start ntp clock: %w", err)
		}
		a.wall = a.ntp
	}

	a.store = store.NewSQLiteStore(store.Params{
		Path:   cfg.Store.Path,
		Logger: appLogger,
	})
	if err = a.store.Open(ctx); err != nil {
		a.shutdown()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return a, nil
}

func (a *app) shutdown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.WarnW("closing store", "error", err)
		}
	}
	if a.ntp != nil {
		a.ntp.Stop()
	}
	_ = a.logger.Sync()
}
