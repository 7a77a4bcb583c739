package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"portfolio/api/config"
)

type ClickHouseClient struct {
	Conn   clickhouse.Conn
	logger *slog.Logger
}

const createActivityEventsTable = `
	CREATE TABLE IF NOT EXISTS activity_events (
		id Int64,
		timestamp DateTime64(3),
		activity String,
		type LowCardinality(String),
		visitor_id Nullable(String),
		ip_address Nullable(String),
		user_agent Nullable(String),
		page Nullable(String),
		session_duration Nullable(Int64)
	) ENGINE = MergeTree
	ORDER BY (type, timestamp)
`

func NewClickHouseDB(cfg config.ClickHouse, logger *slog.Logger) (*ClickHouseClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("CLICKHOUSE_HOST, CLICKHOUSE_NATIVE_PORT, or CLICKHOUSE_DB_NAME environment variables are not set")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.NativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "portfolio-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, createActivityEventsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create activity_events table: %w", err)
	}

	logger.Info("connected to ClickHouse", "addr", options.Addr[0], "database", cfg.Database)
	return &ClickHouseClient{Conn: conn, logger: logger}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			c.logger.Error("error closing ClickHouse connection", "error", err)
			return
		}
		c.logger.Info("ClickHouse connection closed")
	}
}
