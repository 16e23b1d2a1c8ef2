package kitchen

// IngredientsRequest accumulates the total ingredient demand of one batch so
// the warehouse is asked exactly once per batch, not once per order.
type IngredientsRequest struct {
	Ingredients map[string]int
	OrderIDs    []string
}

func NewIngredientsRequest() *IngredientsRequest {
	return &IngredientsRequest{Ingredients: map[string]int{}}
}

// Add folds one order's recipe quantities into the running totals.
func (r *IngredientsRequest) Add(orderID string, ingredients map[string]int) {
	r.OrderIDs = append(r.OrderIDs, orderID)
	for name, qty := range ingredients {
		r.Ingredients[name] += qty
	}
}

func (r *IngredientsRequest) Orders() []OrderRef {
	out := make([]OrderRef, 0, len(r.OrderIDs))
	for _, id := range r.OrderIDs {
		out = append(out, OrderRef{ID: id})
	}
	return out
}

func (r *IngredientsRequest) Payload() IngredientsRequestPayload {
	return IngredientsRequestPayload{Ingredients: r.Ingredients, Orders: r.Orders()}
}
