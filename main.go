package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/httpserver"
	"github.com/dkarger/felt/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	data, err := catalog.Load(getEnv("BALANCE_PATH", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load balance data")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/felt.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, data, db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("jokers", len(data.Jokers)).Msg("starting felt server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
