// Command migrate applies or rolls back the document-store schema.
package main

import (
	"database/sql"
	"errors"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"ourforever/internal/docstore"
	"ourforever/internal/logging"
)

const usage = "usage: migrate up|down|version|force <version>"

func main() {
	_ = godotenv.Load("config/local.env")
	_ = godotenv.Load()
	logging.SetGlobal(logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"}))

	if len(os.Args) < 2 {
		log.Fatal().Msg(usage)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	m, err := docstore.Migrator(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create migrator")
	}

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("roll back migrations")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("no migrations applied")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("read version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	case "force":
		if len(os.Args) != 3 {
			log.Fatal().Msg(usage)
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("parse version")
		}
		if err := m.Force(version); err != nil {
			log.Fatal().Err(err).Msg("force version")
		}
		log.Info().Int("version", version).Msg("version forced")
	default:
		log.Fatal().Msg(usage)
	}
}
