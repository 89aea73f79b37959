package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/antispam-admin/internal/adapters/store"
	"github.com/mikey/antispam-admin/internal/config"
	"go.uber.org/zap"
)

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates a store based on the configuration and, when
// store.seed is enabled, loads the demo dataset into it.
func (f *StoreFactory) CreateStore() (store.Store, error) {
	storeCfg := f.cfg.GetStore()

	var (
		st  store.Store
		err error
	)
	switch storeCfg.Type {
	case "memory":
		st = store.NewMemoryStore(f.logger)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		st, err = store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "mysql":
		st, err = store.NewMySQLStore(storeCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if storeCfg.Seed {
		if err := st.Seed(context.Background(), store.DemoDataset()); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}

	return st, nil
}
