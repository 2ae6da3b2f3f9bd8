package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avasile/pricetracker/logger"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Store bundles the connection pool and the repositories built on it
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	Products *ProductRepo
	Prices   *PriceRepo
	Alerts   *AlertRepo
}

// Open connects to PostgreSQL and verifies the connection. Numeric columns
// are mapped to shopspring decimals on every pooled connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		pool:     pool,
		log:      logger.ForComponent("store"),
		Products: &ProductRepo{pool: pool},
		Prices:   &PriceRepo{pool: pool},
		Alerts:   &AlertRepo{pool: pool},
	}
	s.log.Info().Msg("Connected to database")
	return s, nil
}

// EnsureSchema creates the tables and indexes if they do not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}
