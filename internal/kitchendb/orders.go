package kitchendb

import (
	"context"
	"errors"

	"kitchenline/internal/kitchen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderStore persists order-to-recipe assignments. The saga owns the
// transaction exclusively; this store never opens its own inside one.
type OrderStore struct{ DB *pgxpool.Pool }

func (s *OrderStore) Begin(ctx context.Context) (kitchen.Tx, error) {
	return s.DB.BeginTx(ctx, pgx.TxOptions{})
}

// InsertOrders writes every row in one bulk operation inside tx.
func (s *OrderStore) InsertOrders(ctx context.Context, tx kitchen.Tx, rows []kitchen.OrderRecord) error {
	ptx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("tx is not a pgx transaction")
	}

	src := make([][]any, 0, len(rows))
	for _, r := range rows {
		src = append(src, []any{r.ID, r.CustomerID, r.RecipeID})
	}

	n, err := ptx.CopyFrom(ctx,
		pgx.Identifier{"orders"},
		[]string{"id", "customer_id", "recipe_id"},
		pgx.CopyFromRows(src),
	)
	if err != nil {
		return err
	}
	if n != int64(len(rows)) {
		return errors.New("bulk insert wrote fewer rows than expected")
	}
	return nil
}

func (s *OrderStore) GetOrder(ctx context.Context, orderID string) (kitchen.Order, error) {
	var o kitchen.Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, customer_id, recipe_id, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.RecipeID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return kitchen.Order{}, err
	}
	return o, nil
}
