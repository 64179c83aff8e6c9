package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/andrhp/lp-dashboard/internal/config"
)

// startupPingTimeout bounds the pre-flight ping at startup so a dead
// database fails fast instead of stalling the process.
const startupPingTimeout = 5 * time.Second

// PostgresDB holds the pooled sqlx connection used by the snapshot store.
type PostgresDB struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresDB opens a connection pool, applies the configured pool
// limits, and verifies connectivity before returning.
func NewPostgresDB(cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return &PostgresDB{
		db:     db,
		logger: logger,
	}, nil
}

func buildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// Close releases the connection pool.
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// DB exposes the pool to the repositories built on top of it.
func (p *PostgresDB) DB() *sqlx.DB {
	return p.db
}

// HealthCheck reports whether the database answers a ping.
func (p *PostgresDB) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
