package services

import (
	"context"
	"fmt"
	"time"

	"sample-app/config"
	"sample-app/logger"
	"sample-app/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	createItemsTableSQL = `
		CREATE TABLE IF NOT EXISTS items (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`

	healthSQL = `SELECT NOW() AS time, version() AS version`

	listItemsSQL = `
		SELECT id, name, description, created_at
		FROM items
		ORDER BY created_at DESC, id DESC`

	insertItemSQL = `
		INSERT INTO items (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at`
)

// Operation names used for metrics and error reporting
const (
	OpHealth     = "health"
	OpListItems  = "list_items"
	OpCreateItem = "create_item"
)

// Store is the item store backed by a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
	// err is set when no pool could be built from the configuration.
	// Every operation then fails with it as a connect error.
	err error
}

// NewStore creates the pool without dialing. Connections are opened on
// first use so the service starts even when the database is down; the
// health route reports that state instead. An unusable configuration is
// reported the same way, see Err.
func NewStore(cfg config.DatabaseConfig) *Store {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return &Store{err: err}
	}

	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return &Store{err: fmt.Errorf("create pool: %w", err)}
	}
	return &Store{pool: pool}
}

// Err returns the configuration error every operation will fail with, or nil.
func (s *Store) Err() error {
	return s.err
}

// Close releases every pooled connection.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Health runs a trivial query returning server time and version.
func (s *Store) Health(ctx context.Context) (*DBHealth, error) {
	var h DBHealth
	err := s.withConn(ctx, OpHealth, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, healthSQL).Scan(&h.Time, &h.Version)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListItems returns every item, newest first.
func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.withConn(ctx, OpListItems, func(conn *pgxpool.Conn) error {
		if _, err := conn.Exec(ctx, createItemsTableSQL); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, listItemsSQL)
		if err != nil {
			return err
		}
		items, err = pgx.CollectRows(rows, pgx.RowToStructByName[Item])
		return err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// CreateItem inserts a row and returns it as stored.
func (s *Store) CreateItem(ctx context.Context, in NewItem) (*Item, error) {
	var item Item
	err := s.withConn(ctx, OpCreateItem, func(conn *pgxpool.Conn) error {
		if _, err := conn.Exec(ctx, createItemsTableSQL); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, insertItemSQL, in.Name, in.Description)
		if err != nil {
			return err
		}
		item, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Item])
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// withConn acquires one pooled connection for the duration of fn and
// releases it on every path. Acquisition failures are connect errors,
// everything fn returns is a query error.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *pgxpool.Conn) error) error {
	start := time.Now()
	defer func() {
		metrics.DBOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if s.err != nil {
		metrics.DBOperations.WithLabelValues(op, metrics.StatusError).Inc()
		return connectError(ctx, op, s.err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		metrics.DBOperations.WithLabelValues(op, metrics.StatusError).Inc()
		return connectError(ctx, op, err)
	}
	defer conn.Release()

	if err := fn(conn); err != nil {
		metrics.DBOperations.WithLabelValues(op, metrics.StatusError).Inc()
		return queryError(ctx, op, err)
	}

	metrics.DBOperations.WithLabelValues(op, metrics.StatusSuccess).Inc()
	logger.Logger.Debug("store operation completed",
		zap.String("operation", op),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
