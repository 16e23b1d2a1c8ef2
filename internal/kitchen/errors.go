package kitchen

import (
	"context"
	"errors"
)

var (
	// ErrRecipeUnavailable: katalog kosong atau recipe store tidak bisa diakses.
	ErrRecipeUnavailable = errors.New("no recipe available")

	// ErrWarehouseUnreachable: gagal komunikasi (timeout, transport error).
	ErrWarehouseUnreachable = errors.New("warehouse unreachable")

	// ErrIngredientsDenied: warehouse menjawab success=false.
	ErrIngredientsDenied = errors.New("ingredients denied by warehouse")

	// ErrPersistence: insert atau transaksi gagal.
	ErrPersistence = errors.New("order persistence failed")
)

// Kind maps an error to a short label for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrRecipeUnavailable):
		return "recipe_unavailable"

	case errors.Is(err, ErrWarehouseUnreachable):
		return "warehouse_unreachable"

	case errors.Is(err, ErrIngredientsDenied):
		return "ingredients_denied"

	case errors.Is(err, ErrPersistence):
		return "persistence"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}
