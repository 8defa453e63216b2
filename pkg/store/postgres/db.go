package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"
	"github.com/natserract/eircode/pkg/batch"
	"github.com/natserract/eircode/pkg/eircode"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS eircode_lookups (
	id            UUID PRIMARY KEY,
	kind          TEXT NOT NULL,
	value         TEXT NOT NULL,
	error_code    INTEGER,
	error_message TEXT,
	payload       JSONB,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertLookupSQL = `
INSERT INTO eircode_lookups (id, kind, value, error_code, error_message, payload, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// DB wraps the pgx connection pool and records batch lookup results
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Config holds database configuration
type Config struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Database        string        `envconfig:"DB_NAME" default:"eircode"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"5m"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// NewConfig creates a new database config from environment variables
func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	return &cfg, nil
}

// DSN returns the keyword/value connection string for cfg.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// New creates a new database connection pool using pgx
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection pool established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", cfg.MaxConns))

	return &DB{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// InitSchema creates the lookup table if it doesn't exist
func (db *DB) InitSchema(ctx context.Context) error {
	db.logger.Info("Initializing database schema")

	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveResult inserts one lookup result. It satisfies batch.Sink.
func (db *DB) SaveResult(ctx context.Context, r batch.Result) error {
	row, err := newLookupRow(r)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx, insertLookupSQL,
		row.id, row.kind, row.value, row.errorCode, row.errorMessage, row.payload, row.durationMS)
	if err != nil {
		return fmt.Errorf("failed to insert lookup %s: %w", row.id, err)
	}
	return nil
}

type lookupRow struct {
	id           string
	kind         string
	value        string
	errorCode    *int32
	errorMessage *string
	payload      []byte
	durationMS   int64
}

func newLookupRow(r batch.Result) (lookupRow, error) {
	row := lookupRow{
		id:         r.ID.String(),
		kind:       string(r.Job.Kind),
		value:      r.Job.Value,
		durationMS: r.Duration.Milliseconds(),
	}

	if r.Err != nil {
		msg := r.Err.Error()
		row.errorMessage = &msg
		if apiErr, ok := eircode.AsAPIError(r.Err); ok {
			code := int32(apiErr.Code)
			row.errorCode = &code
		}
	}

	if r.Data != nil {
		payload, err := json.Marshal(r.Data)
		if err != nil {
			return lookupRow{}, fmt.Errorf("failed to encode payload: %w", err)
		}
		row.payload = payload
	}
	return row, nil
}

var _ batch.Sink = (*DB)(nil)
