package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storemap-cli/internal/loader"
	"github.com/sells-group/storemap-cli/internal/model"
	"github.com/sells-group/storemap-cli/internal/store"
)

// loadStores reads store records from path. An empty format means detect
// from the file extension.
func loadStores(path, format, sheet string) ([]model.Store, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(format) {
	case "csv":
		return loader.LoadCSV(path)
	case "xlsx":
		return loader.LoadXLSX(path, sheet)
	case "shp":
		return loader.LoadShapefile(path)
	}
	return nil, eris.Errorf("unsupported input format %q", format)
}

// openStore opens the configured persistence backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}
