package config

import "os"

type JwtConfig struct {
	// Secret enables the bearer-token middleware on the inspection API when
	// non-empty.
	Secret string
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
	}
}
