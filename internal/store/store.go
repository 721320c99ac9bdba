// Package store provides the destination backends for party records.
//
// The importer consumes exactly one operation, "insert one record into a
// named table". Each backend performs one independent write per call: there
// is no batching, no retry and no transaction spanning records.
package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/partyload/internal/config"
	"github.com/JonMunkholm/partyload/internal/core"
)

// Inserter writes one record into table.
type Inserter interface {
	Insert(ctx context.Context, table string, rec *core.PartyRecord) error
	Close() error
}

// New builds the backend selected by cfg.Backend. For the sql backend,
// companyCode and table are used for the script header.
func New(ctx context.Context, cfg config.StoreConfig, companyCode, table string) (Inserter, error) {
	switch cfg.Backend {
	case config.BackendREST:
		return NewREST(cfg.URL, cfg.Key, nil), nil
	case config.BackendPostgres:
		pool, err := NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool, pool.Close), nil
	case config.BackendSQL:
		script, err := CreateScript(cfg.SQLOut, companyCode, table)
		if err != nil {
			return nil, err
		}
		return script, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
