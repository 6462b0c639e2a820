package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/internal/providers/nitter"
	"github.com/sandevgo/rtbot/internal/providers/xapi"
	"github.com/sandevgo/rtbot/internal/service/ledger"
	"github.com/sandevgo/rtbot/internal/service/poller"
	"github.com/sandevgo/rtbot/internal/storage/jsonfile"
	"github.com/sandevgo/rtbot/internal/storage/sqlite"
	"github.com/sandevgo/rtbot/internal/transport/telegram"
	"github.com/sandevgo/rtbot/pkg/log"
)

// loadAppConfig reads the runtime .env, parses the process settings and
// applies LOG_LEVEL unless debug was forced.
func loadAppConfig(ctx context.Context) (*config.AppConfig, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	appCfg, err := config.NewAppConfig()
	if err != nil {
		return nil, err
	}
	if !isDebug() {
		log.SetLevel(appCfg.Level())
	}
	return appCfg, nil
}

// newLoop validates every setting the cycle needs before anything touches
// the network or the ledger, then assembles the loop. The returned cleanup
// closes the ledger store.
func newLoop(ctx context.Context, appCfg *config.AppConfig, runCfg *config.RunConfig) (*poller.Loop, func() error, error) {
	xCfg, err := config.NewXConfig()
	if err != nil {
		return nil, nil, err
	}

	var feed core.FeedReader
	if runCfg.SourceKind() == core.SourceNitter {
		nCfg, err := config.NewNitterConfig()
		if err != nil {
			return nil, nil, err
		}
		feed = nitter.NewFeed(*nCfg)
	}

	notifier, err := initNotifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	provider, err := xapi.NewClient(ctx, *xCfg)
	if err != nil {
		return nil, nil, err
	}

	source, err := poller.NewSource(*runCfg, provider, feed)
	if err != nil {
		return nil, nil, err
	}

	store := initStore(ctx, appCfg)

	loop, err := poller.NewLoop(*runCfg, provider, source, ledger.New(store), notifier)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return loop, store.Close, nil
}

func initNotifier(ctx context.Context) (core.Notifier, error) {
	tgCfg, err := config.NewTelegramConfig()
	if err != nil {
		return nil, err
	}
	if !tgCfg.Enabled() {
		return nil, nil
	}
	n, err := telegram.NewNotifier(tgCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	log.FromCtx(ctx).Debug().Int64("chat_id", tgCfg.ChatID).Msg("telegram run summaries enabled")
	return n, nil
}

// initStore opens the configured ledger store. A corrupt sqlite file is
// moved aside; a corrupt json file is handled on load. A sqlite file that
// cannot be opened at all yields a store that fails every load and save,
// so the run proceeds with an empty ledger.
func initStore(ctx context.Context, cfg *config.AppConfig) core.LedgerStore {
	logger := log.FromCtx(ctx)
	path := cfg.GetLedgerPath()
	logger.Debug().Str("backend", cfg.LedgerBackend).Str("path", path).Msg("opening ledger")

	switch cfg.LedgerBackend {
	case config.BackendJSON:
		return jsonfile.NewStore(path)
	default:
		repo, err := sqlite.OpenOrReset(ctx, path)
		if err != nil {
			logger.Warn().
				Err(fmt.Errorf("%w: %w", core.ErrPersistence, err)).
				Str("path", path).
				Msg("ledger database unavailable, nothing will be remembered this run")
			return ledger.Unavailable(err)
		}
		return repo
	}
}

// openStoreNoReset opens the ledger for inspection. A corrupt file is an error here, not a reset.
func openStoreNoReset(ctx context.Context, cfg *config.AppConfig) (core.LedgerStore, error) {
	path := cfg.GetLedgerPath()
	if cfg.LedgerBackend == config.BackendJSON {
		return jsonfile.NewStore(path), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no ledger at %s yet", path)
	}
	return sqlite.Open(ctx, path)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
