package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/pointbook/internal/api"
	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/config"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/Veraticus/pointbook/internal/snapshot"
	"github.com/Veraticus/pointbook/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// initLedger opens the configured ledger backend.
func initLedger(ctx context.Context) (service.Ledger, error) {
	source, err := config.Source(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if source == config.SourceAPI {
		cfg, err := config.LoadAPIConfig(viper.GetViper())
		if err != nil {
			return nil, err
		}
		return api.NewClient(cfg)
	}

	return initStorage(ctx)
}

// initStorage opens the SQLite ledger and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newPublisher connects to the broker when one is configured.
func newPublisher() notify.Publisher {
	cfg := config.LoadNotifyConfig(viper.GetViper())
	if !cfg.Enabled() {
		return notify.Nop{}
	}

	client, err := notify.NewClient(cfg)
	if err != nil {
		slog.Warn("change notifications disabled", "error", err)
		return notify.Nop{}
	}
	return client
}

// announce publishes a change. Failures are logged; the mutation already happened.
func announce(ctx context.Context, msg *notify.ChangeMessage) {
	pub := newPublisher()
	defer func() { _ = pub.Close() }()

	if err := pub.Publish(ctx, msg); err != nil {
		slog.Warn("failed to publish ledger change", "change", msg.String(), "error", err)
	}
}

// loadSummary loads a snapshot from src and summarizes it.
func loadSummary(ctx context.Context, src service.Source, filter ledger.Filter, now time.Time) (ledger.Summary, model.CategoryIndex, error) {
	reloader := snapshot.NewReloader(src, snapshot.NewStore())
	snap, err := reloader.Reload(ctx)
	if err != nil {
		return ledger.Summary{}, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return reloader.Store().Summary(filter, now), model.IndexCategories(snap.Categories), nil
}

// parseNow turns the --now flag into a reference time. Empty means the wall clock.
func parseNow(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now(), nil
	}
	date, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, common.NewUserError("--now must look like 2024-01-31", err)
	}
	return date, nil
}

// parseAmount parses a user supplied quantity.
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("%q is not a number", value), common.ErrInvalidAmount)
	}
	return amount, nil
}

// friendly rewrites well-known failures into user errors.
func friendly(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrUnauthorized):
		return common.NewUserError("not logged in or token expired; run: pointbook login", err)
	case errors.Is(err, common.ErrUnknownCategory):
		return common.NewUserError("see: pointbook categories list", err)
	default:
		return err
	}
}
