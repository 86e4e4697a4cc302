package config

import (
	"fmt"
	"os"
)

// Backend kinds selectable via STORE_BACKEND.
const (
	BackendRedis    = "redis"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

type StoreConfig struct {
	// Name identifies this exploration; it scopes the data inside shared
	// backends.
	Name string

	// Backend selects the adapter: redis, file, postgres or badger.
	Backend string

	// DBFilePath is where file-snapshot backends persist the result set.
	// DBFileDefaulted is true when no path was configured and the store fell
	// back to <cwd>/<name>.db.
	DBFilePath      string
	DBFileDefaulted bool
}

func NewStoreConfig() *StoreConfig {
	name := getEnv("STORE_NAME", "dse")

	cfg := &StoreConfig{
		Name:       name,
		Backend:    getEnv("STORE_BACKEND", BackendRedis),
		DBFilePath: os.Getenv("STORE_DB_FILE"),
	}
	if cfg.DBFilePath == "" {
		cwd, _ := os.Getwd()
		cfg.DBFilePath = fmt.Sprintf("%s/%s.db", cwd, name)
		cfg.DBFileDefaulted = true
	}
	return cfg
}
