package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kitchenline/internal/kitchen"
	"kitchenline/internal/redisx"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RecipeCatalog is the read surface of the in-memory recipe cache.
type RecipeCatalog interface {
	List(ctx context.Context) ([]kitchen.Recipe, error)
	Refresh(ctx context.Context) error
}

// OrderReader fetches a committed order row.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (kitchen.Order, error)
}

type KitchenHandler struct {
	Recipes RecipeCatalog
	Orders  OrderReader
	Redis   *redis.Client
	Log     *zap.Logger
}

func (h *KitchenHandler) Register(r *chi.Mux) {
	r.Get("/recipes", h.listRecipes)
	r.Post("/recipes/refresh", h.refreshRecipes)
	r.Get("/orders/{id}", h.getOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *KitchenHandler) listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	recipes, err := h.Recipes.List(ctx)
	if err != nil {
		h.Log.Error("list recipes", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recipe catalog unavailable"})
		return
	}
	if recipes == nil {
		recipes = []kitchen.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// refreshRecipes is the manual invalidation hook for the forever cache.
func (h *KitchenHandler) refreshRecipes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Recipes.Refresh(ctx); err != nil {
		h.Log.Error("refresh recipes", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

type orderResp struct {
	kitchen.Order
	Status kitchen.Status `json:"status,omitempty"`
}

func (h *KitchenHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	resp := orderResp{Order: order}

	// status lives in the cache; committed rows imply COMPLETED on a miss
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		var cached struct {
			Status kitchen.Status `json:"status"`
		}
		if json.Unmarshal([]byte(s), &cached) == nil {
			resp.Status = cached.Status
		}
	}
	if resp.Status == "" {
		resp.Status = kitchen.StatusCompleted
	}

	writeJSON(w, http.StatusOK, resp)
}
