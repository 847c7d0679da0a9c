// Package database opens the connection pool and provides the transaction manager shared by every
// repository.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// pingTimeout bounds the connectivity check run by Connect.
const pingTimeout = 5 * time.Second

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect opens a pool, applies the connection limits and verifies the server is reachable.
func Connect(cfg Config) (*sql.DB, error) {
	dsn, err := dataSourceName(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Ping(context.Background(), db, pingTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Ping checks connectivity, giving up after timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return errors.New("database not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return db.PingContext(ctx)
}

// dataSourceName forces parseTime and UTC on MySQL connection strings so DATETIME columns scan into
// time.Time. Other drivers are passed through unchanged.
func dataSourceName(driver, connectionString string) (string, error) {
	if driver != "mysql" {
		return connectionString, nil
	}

	cfg, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return "", fmt.Errorf("invalid mysql connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	return cfg.FormatDSN(), nil
}
