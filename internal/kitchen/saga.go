package kitchen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Tx is the slice of a pgx transaction the saga needs. Rollback after a
// commit must be a no-op (pgx behaves that way).
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// OrderStore owns the durable order rows. InsertOrders must write all rows
// in one bulk operation inside the given transaction.
type OrderStore interface {
	Begin(ctx context.Context) (Tx, error)
	InsertOrders(ctx context.Context, tx Tx, rows []OrderRecord) error
}

// RecipePicker selects one recipe uniformly at random.
type RecipePicker interface {
	PickRandom(ctx context.Context) (Recipe, error)
}

// WarehouseClient reserves ingredients. It must return a distinguished error
// for communication failures so "warehouse said no" and "warehouse
// unreachable" stay apart in the error value, even though the saga maps both
// to the same FAILED outcome.
type WarehouseClient interface {
	RequestIngredients(ctx context.Context, req *IngredientsRequest) (bool, error)
}

// StatusNotifier emits order_status_changed events. It never fails the
// caller; delivery problems are its own concern.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, orders []OrderStatusRef)
}

// Saga fulfills one dispatched batch: per-order recipe assignment, one
// aggregated warehouse reservation, one bulk insert inside a transaction,
// status events around it. Single batch at a time per process; scale-out is
// more processes on the same consumer group.
type Saga struct {
	store     OrderStore
	recipes   RecipePicker
	warehouse WarehouseClient
	status    StatusNotifier
	prepTime  time.Duration
	sleep     func(d time.Duration)
	log       *zap.Logger
}

func NewSaga(store OrderStore, recipes RecipePicker, warehouse WarehouseClient, status StatusNotifier, prepTime time.Duration, log *zap.Logger) *Saga {
	return &Saga{
		store:     store,
		recipes:   recipes,
		warehouse: warehouse,
		status:    status,
		prepTime:  prepTime,
		sleep:     time.Sleep,
		log:       log,
	}
}

// Fulfill runs the whole saga for one batch. It never returns an error: any
// failure rolls the transaction back and emits FAILED for every original
// order id, and the inbound message is considered consumed either way.
//
// Status events are not part of the transaction. The IN_PROGRESS emission
// happens before the insert, so consumers can observe a status that a later
// rollback contradicts; events are eventually consistent hints, the
// committed rows are the record.
func (s *Saga) Fulfill(ctx context.Context, batch []DispatchedOrder) {
	if len(batch) == 0 {
		return
	}

	s.log.Info("batch received for fulfillment", zap.Int("orders", len(batch)))

	tx, err := s.store.Begin(ctx)
	if err != nil {
		s.log.Error("begin transaction", zap.Error(err), zap.String("kind", Kind(err)))
		s.fail(ctx, batch)
		return
	}
	// release on every exit path; no-op once committed or rolled back
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.run(ctx, tx, batch); err != nil {
		s.log.Error("fulfillment failed",
			zap.Error(err),
			zap.String("kind", Kind(err)),
			zap.Int("orders", len(batch)),
		)
		_ = tx.Rollback(ctx)
		s.fail(ctx, batch)
		return
	}

	s.log.Info("batch fulfilled", zap.Int("orders", len(batch)))
}

func (s *Saga) run(ctx context.Context, tx Tx, batch []DispatchedOrder) error {
	assigned := make([]AssignedOrder, 0, len(batch))
	req := NewIngredientsRequest()

	for _, order := range batch {
		recipe, err := s.recipes.PickRandom(ctx)
		if err != nil {
			return err
		}
		s.log.Info("recipe selected",
			zap.String("order_id", order.ID),
			zap.String("recipe", recipe.Name),
		)

		assigned = append(assigned, AssignedOrder{
			DispatchedOrder: order,
			RecipeID:        recipe.ID,
			RecipeName:      recipe.Name,
			Status:          StatusInProgress,
		})
		req.Add(order.ID, recipe.Ingredients)
	}

	// best effort; a lost IN_PROGRESS hint does not abort the batch
	s.status.OrderStatusChanged(ctx, inProgressRefs(assigned))

	rows := make([]OrderRecord, 0, len(assigned))
	for _, a := range assigned {
		rows = append(rows, OrderRecord{ID: a.ID, RecipeID: a.RecipeID, CustomerID: a.CustomerID})
	}
	if err := s.store.InsertOrders(ctx, tx, rows); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// aggregation for the whole batch is done; exactly one warehouse call
	ok, err := s.warehouse.RequestIngredients(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIngredientsDenied
	}

	// kitchen at work; not cancellable mid-wait
	s.sleep(s.prepTime)

	s.status.OrderStatusChanged(ctx, terminalRefs(batch, StatusCompleted))

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// fail emits FAILED for the original batch, after rollback.
func (s *Saga) fail(ctx context.Context, batch []DispatchedOrder) {
	s.status.OrderStatusChanged(ctx, terminalRefs(batch, StatusFailed))
}

func inProgressRefs(assigned []AssignedOrder) []OrderStatusRef {
	refs := make([]OrderStatusRef, 0, len(assigned))
	for _, a := range assigned {
		refs = append(refs, OrderStatusRef{
			ID:         a.ID,
			StatusID:   StatusInProgress,
			RecipeID:   a.RecipeID,
			RecipeName: a.RecipeName,
		})
	}
	return refs
}

func terminalRefs(batch []DispatchedOrder, status Status) []OrderStatusRef {
	refs := make([]OrderStatusRef, 0, len(batch))
	for _, o := range batch {
		refs = append(refs, OrderStatusRef{ID: o.ID, StatusID: status})
	}
	return refs
}
