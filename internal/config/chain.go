package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ChainConfig struct {
	BaseURL        string        `env:"TOKEN_SERVICE_URL,required,notEmpty"`
	Account        string        `env:"TOKEN_ACCOUNT,required,notEmpty"`
	HouseAccount   string        `env:"HOUSE_ACCOUNT,required,notEmpty"`
	SpenderAccount string        `env:"SPENDER_ACCOUNT"`
	RequestTimeout time.Duration `env:"TOKEN_REQUEST_TIMEOUT" envDefault:"5s"`
}

func LoadChain() (ChainConfig, error) {
	var cfg ChainConfig
	err := env.Parse(&cfg)
	return cfg, err
}
