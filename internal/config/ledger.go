package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type LedgerConfig struct {
	HistorySize      int           `env:"WAGER_HISTORY_SIZE" envDefault:"200"`
	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE" envDefault:"500"`
	PlacementTimeout time.Duration `env:"PLACEMENT_TIMEOUT" envDefault:"30s"`

	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"4"`
	RetryBase        time.Duration `env:"RETRY_BASE" envDefault:"500ms"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY" envDefault:"10s"`
	RetryMaxElapsed  time.Duration `env:"RETRY_MAX_ELAPSED" envDefault:"1m"`
}

func LoadLedger() (LedgerConfig, error) {
	var cfg LedgerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
