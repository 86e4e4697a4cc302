package config

import "os"

type AppConfig struct {
	DebugMode      bool
	StoreConfig    *StoreConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	BadgerConfig   *BadgerConfig
	HTTPConfig     *HTTPConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		StoreConfig:    NewStoreConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		BadgerConfig:   NewBadgerConfig(),
		HTTPConfig:     NewHTTPConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
