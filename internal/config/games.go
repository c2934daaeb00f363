package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GamesConfig struct {
	SessionTimeout time.Duration `env:"GAME_SESSION_TIMEOUT" envDefault:"90s"`

	MinBetCredits int64 `env:"MIN_BET_CREDITS" envDefault:"1"`
	MaxBetCredits int64 `env:"MAX_BET_CREDITS" envDefault:"250000"`

	MinesHouseEdge  float64 `env:"MINES_HOUSE_EDGE" envDefault:"0.97"`
	BlackjackPayout float64 `env:"BLACKJACK_PAYOUT" envDefault:"1.5"`

	RNGPoolSize       int           `env:"RNG_POOL_SIZE" envDefault:"1024"`
	RNGReseedInterval time.Duration `env:"RNG_RESEED_INTERVAL" envDefault:"10m"`

	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"30s"`
}

func LoadGames() (GamesConfig, error) {
	var cfg GamesConfig
	err := env.Parse(&cfg)
	return cfg, err
}
