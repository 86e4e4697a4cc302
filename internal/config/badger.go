package config

type BadgerConfig struct {
	Path       string
	SyncWrites bool
}

func NewBadgerConfig() *BadgerConfig {
	return &BadgerConfig{
		Path:       getEnv("BADGER_PATH", "badger-data"),
		SyncWrites: getEnv("BADGER_SYNC_WRITES", "true") == "true",
	}
}
