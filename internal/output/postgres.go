package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/pupulse/internal/events"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS session_events (
    id              BIGSERIAL PRIMARY KEY,
    topic           TEXT        NOT NULL,
    event_type      TEXT        NOT NULL,
    occurred_at     TIMESTAMPTZ NOT NULL,
    order_id        TEXT,
    partner_id      TEXT,
    menu_item_id    TEXT,
    status          TEXT,
    previous_status TEXT,
    total           BIGINT,
    item_count      INTEGER,
    earnings        BIGINT,
    address         TEXT,
    payload         JSONB       NOT NULL
)`

const insertEvent = `
INSERT INTO session_events (
    topic, event_type, occurred_at, order_id, partner_id, menu_item_id,
    status, previous_status, total, item_count, earnings, address, payload
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// execer is the part of a pgx pool or transaction the output needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresOutput appends every event as a row of session_events.
type PostgresOutput struct {
	pool    *pgxpool.Pool
	db      execer
	timeout time.Duration
}

func NewPostgresOutput(databaseURL string) (*PostgresOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, createEventsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating session_events table: %w", err)
	}

	return &PostgresOutput{pool: pool, db: pool, timeout: 5 * time.Second}, nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var ev events.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.db.Exec(ctx, insertEvent,
		topic,
		ev.EventType,
		time.Unix(ev.Timestamp, 0).UTC(),
		nullable(ev.OrderID),
		nullable(ev.PartnerID),
		nullable(ev.MenuItemID),
		nullable(ev.Status),
		nullable(ev.PreviousStatus),
		ev.Total,
		ev.ItemCount,
		ev.Earnings,
		nullable(ev.Address),
		msg,
	)
	if err != nil {
		if isRetryableError(err) {
			return fmt.Errorf("transient failure inserting into session_events: %w", err)
		}
		return fmt.Errorf("failed to insert into session_events: %w", err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isRetryableError reports serialization failures, deadlocks and dropped
// connections.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "08000", "08003", "08006":
			return true
		}
		return false
	}
	return errors.Is(err, pgx.ErrTxClosed) || pgconn.SafeToRetry(err)
}
