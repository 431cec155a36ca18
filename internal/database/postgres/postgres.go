package postgres

import (
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// ConnectAndCreateDB connects to the configured database, creating it when
// missing, and applies the embedded schema. Every statement in the schema is
// idempotent so it runs on each start.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	created, err := ensureDatabase(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", dsn(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if created {
		log.Printf("Database '%s' created and schema applied", cfg.DBname)
	}
	return db, nil
}

func dsn(cfg config.PostgresConfig, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbname)
}

// ensureDatabase reports whether the database had to be created.
func ensureDatabase(cfg config.PostgresConfig) (bool, error) {
	admin, err := sqlx.Connect("postgres", dsn(cfg, "postgres"))
	if err != nil {
		return false, fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	defer admin.Close()

	var exists bool
	if err := admin.Get(&exists, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBname); err != nil {
		return false, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := admin.Exec(fmt.Sprintf(`CREATE DATABASE %s`, pq.QuoteIdentifier(cfg.DBname))); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
	}
	return true, nil
}

func applySchema(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	statements := SplitStatements(schema)
	for i, statement := range statements {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to apply schema statement %d (%.60s): %w", i+1, statement, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	log.Printf("Schema applied, %d statements", len(statements))
	return nil
}

// SplitStatements splits a SQL script on semicolons, dropping comment-only
// lines and empty statements.
func SplitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, statement := range strings.Split(strings.Join(lines, "\n"), ";") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// RetryConnectOnFailed keeps reconnecting until it succeeds, then stores the
// new handle in *db.
func RetryConnectOnFailed(waitAmount time.Duration, db **sqlx.DB, cfg config.PostgresConfig) {
	for {
		if *db != nil {
			if err := (*db).Ping(); err == nil {
				log.Printf("database connection is healthy, no retry needed")
				return
			}
		}

		newDB, err := ConnectAndCreateDB(cfg)
		if err == nil {
			*db = newDB
			log.Printf("database retry connection successfully")
			return
		}
		log.Printf("failed to retry connect database: %s, next retry in %v", err, waitAmount)
		time.Sleep(waitAmount)
	}
}
