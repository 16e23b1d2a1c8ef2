package kitchen

import (
	"encoding/json"
	"time"
)

const (
	EventOrderDispatched    = "order_dispatched"
	EventOrderStatusChanged = "order_status_changed"
	EventRequestIngredients = "request_ingredients"
	EventIngredientsReply   = "ingredients_reply"
)

const (
	TopicOrderDispatched    = "kitchen.order.dispatched"
	TopicOrderStatus        = "manager.order.status"
	TopicIngredientsRequest = "warehouse.ingredients.request"
	TopicIngredientsReply   = "warehouse.ingredients.reply"
)

// Partition key = first order id of the batch, so all status events for one
// batch land on the same partition and keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

// OrderStatusRef is one order's entry in a status-changed event. Recipe
// fields are only set on the IN_PROGRESS emission.
type OrderStatusRef struct {
	ID         string `json:"id"`
	StatusID   Status `json:"status_id"`
	RecipeID   int64  `json:"recipe_id,omitempty"`
	RecipeName string `json:"recipe_name,omitempty"`
}

type OrderStatusChangedPayload struct {
	Orders []OrderStatusRef `json:"orders"`
}

type OrderRef struct {
	ID string `json:"id"`
}

type IngredientsRequestPayload struct {
	Ingredients map[string]int `json:"ingredients"`
	Orders      []OrderRef     `json:"orders"`
}

type IngredientsReplyPayload struct {
	Success bool `json:"success"`
}
