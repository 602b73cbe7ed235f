package main

import (
	"context"
	"database/sql"

	"vigil/internal/platform/postgres"
)

// openDatabase connects and migrates when a URL is configured. A nil return
// with nil error means the process should fall back to in-memory stores.
func openDatabase(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, nil
	}
	return postgres.Open(ctx, databaseURL)
}

// passthroughRunner satisfies the services' TxRunner without a database.
// In-memory stores apply each write atomically, so there is nothing to
// begin or commit.
type passthroughRunner struct{}

func (passthroughRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
