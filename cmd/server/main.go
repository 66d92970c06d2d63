package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"sound-clash/internal/catalog"
	"sound-clash/internal/config"
	"sound-clash/internal/db"
	"sound-clash/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	conn := openDatabase(cfg)

	srv := server.New(conn, cfg)
	srv.StartCleanup(time.Minute)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Str("log_level", level.String()).Bool("persistence", conn != nil).Msg("starting sound-clash server")
	if err := http.ListenAndServe(":"+port, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openDatabase connects to Postgres when DATABASE_URL is set. The server
// runs fully in memory without it; the journal and catalog tables are
// extras, not requirements.
func openDatabase(cfg config.Config) *gorm.DB {
	if os.Getenv("DATABASE_URL") == "" {
		log.Info().Msg("DATABASE_URL not set, running without persistence")
		return nil
	}
	conn, err := db.Open()
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to database, running without persistence")
		return nil
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	}
	if err := db.Migrate(conn); err != nil {
		log.Warn().Err(err).Msg("failed to run migrations, running without persistence")
		return nil
	}
	if err := catalog.Seed(conn); err != nil {
		log.Warn().Err(err).Msg("failed to seed catalog tables")
	}
	return conn
}
