package kitchendb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitSchema creates the kitchen tables if they do not exist. Recipes come
// first; orders carry the foreign key.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			ingredients JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			customer_id TEXT NOT NULL,
			recipe_id BIGINT REFERENCES recipes(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
