package main

import (
	"errors"
	"os"

	"heartbound/internal/config"
	"heartbound/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	src, err := iofs.New(os.DirFS("."), "migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("open migrations failed")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate init failed")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("migrate up failed")
	}
	log.Info().Msg("migrations applied")
}
