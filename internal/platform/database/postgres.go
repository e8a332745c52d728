package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"snippetbox/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog"
)

const pingTimeout = 5 * time.Second

// Connect opens the pgx-backed pool described by cfg and verifies it answers.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to PostgreSQL")
	return db, nil
}

// Ping checks the pool with a bounded timeout.
func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return TranslateError("ping database", err)
	}
	return nil
}

func Close(db *sql.DB, log zerolog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("closing database")
		return
	}
	log.Info().Msg("database connection closed")
}
