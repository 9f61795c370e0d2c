package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique indexes on the two codes are the authoritative backstop for the
// generator's check-then-act race.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL,
    phone_number     TEXT NOT NULL,
    street           TEXT NOT NULL,
    city             TEXT NOT NULL,
    state            TEXT NOT NULL,
    country          TEXT NOT NULL,
    reference_code   TEXT NOT NULL UNIQUE,
    payment_code     TEXT NOT NULL UNIQUE,
    status           TEXT NOT NULL DEFAULT 'pending',
    proof_of_payment TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
    id       TEXT PRIMARY KEY,
    order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    position INT  NOT NULL,
    name     TEXT NOT NULL,
    amount   NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
    quantity INT  NOT NULL CHECK (quantity > 0)
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// EnsureSchema creates the tables on startup if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
