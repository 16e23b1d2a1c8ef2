package kitchen

import "time"

// DispatchedOrder is what arrives on the dispatch topic: the order as the
// upstream service knows it, before the kitchen has touched it.
type DispatchedOrder struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
}

type Recipe struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Ingredients map[string]int `json:"ingredients"`
}

// AssignedOrder is a DispatchedOrder with a recipe chosen for it. It lives
// only for the duration of one fulfillment run; nothing stores it as-is.
type AssignedOrder struct {
	DispatchedOrder
	RecipeID   int64
	RecipeName string
	Status     Status
}

// OrderRecord is the projection of an AssignedOrder that gets persisted.
type OrderRecord struct {
	ID         string
	RecipeID   int64
	CustomerID string
}

// Order is a stored order row as read back for the HTTP surface.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	RecipeID   *int64    `json:"recipe_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
