package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ReconcilerConfig struct {
	Interval      time.Duration `env:"RECONCILE_INTERVAL" envDefault:"15s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	WagerDeadline time.Duration `env:"WAGER_DEADLINE" envDefault:"2m"`
}

func LoadReconciler() (ReconcilerConfig, error) {
	var cfg ReconcilerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
