package kitchendb

import (
	"context"

	"kitchenline/internal/kitchen"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RecipeStore reads the recipe catalog. Recipes are maintained by an
// external catalog process; this side only ever selects.
type RecipeStore struct{ DB *pgxpool.Pool }

func (s *RecipeStore) ListRecipes(ctx context.Context) ([]kitchen.Recipe, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name, ingredients FROM recipes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []kitchen.Recipe
	for rows.Next() {
		var r kitchen.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Ingredients); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
