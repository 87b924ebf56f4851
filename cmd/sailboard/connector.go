package main

import (
	"context"
	"log/slog"

	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/connectors/fixture"
	"github.com/fentz26/sailboard/internal/connectors/sailpoint"
)

// openConnector returns a fixture connector when file is set, otherwise a
// SailPoint client built from the loaded configuration.
func openConnector(ctx context.Context, file string) (connectors.Connector, error) {
	if file != "" {
		slog.Debug("using fixture connector", "file", file)
		return fixture.New(file), nil
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return sailpoint.New(ctx, sailpoint.Config{
		BaseURL:      cfg.APIBase(),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.ResolvedTokenURL(),
		TokenCache:   cfg.TokenCache,
		Timeout:      cfg.Timeout,
		Logger:       slog.Default(),
	}), nil
}

func listOptions() connectors.ListOptions {
	return connectors.ListOptions{
		Limit:   cfg.Fetch.Limit,
		Sorters: cfg.Fetch.Sorters,
	}
}
