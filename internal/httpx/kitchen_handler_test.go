package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kitchenline/internal/kitchen"
	"kitchenline/internal/redisx"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCatalog struct {
	recipes    []kitchen.Recipe
	listErr    error
	refreshErr error
	refreshes  int
}

func (f *fakeCatalog) List(ctx context.Context) ([]kitchen.Recipe, error) {
	return f.recipes, f.listErr
}

func (f *fakeCatalog) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

type fakeOrderReader struct {
	orders map[string]kitchen.Order
}

func (f *fakeOrderReader) GetOrder(ctx context.Context, orderID string) (kitchen.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return kitchen.Order{}, errors.New("no rows")
	}
	return o, nil
}

type handlerFixture struct {
	srv     *httptest.Server
	catalog *fakeCatalog
	orders  *fakeOrderReader
	redis   *redis.Client
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &handlerFixture{
		catalog: &fakeCatalog{recipes: []kitchen.Recipe{
			{ID: 1, Name: "Soup", Ingredients: map[string]int{"tomato": 2}},
		}},
		orders: &fakeOrderReader{orders: map[string]kitchen.Order{}},
		redis:  rdb,
	}

	router := NewRouter()
	kh := &KitchenHandler{Recipes: f.catalog, Orders: f.orders, Redis: rdb, Log: zaptest.NewLogger(t)}
	kh.Register(router)

	f.srv = httptest.NewServer(router)
	t.Cleanup(f.srv.Close)
	return f
}

func TestListRecipes(t *testing.T) {
	f := newHandlerFixture(t)

	resp, err := http.Get(f.srv.URL + "/recipes")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recipes []kitchen.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recipes))
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup", recipes[0].Name)
}

func TestListRecipes_CatalogDown(t *testing.T) {
	f := newHandlerFixture(t)
	f.catalog.listErr = kitchen.ErrRecipeUnavailable

	resp, err := http.Get(f.srv.URL + "/recipes")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRefreshRecipes(t *testing.T) {
	f := newHandlerFixture(t)

	resp, err := http.Post(f.srv.URL+"/recipes/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.catalog.refreshes)
}

func TestGetOrder_WithCachedStatus(t *testing.T) {
	f := newHandlerFixture(t)

	recipeID := int64(1)
	f.orders.orders["o-1"] = kitchen.Order{
		ID: "o-1", CustomerID: "10", RecipeID: &recipeID,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, "o-1")
	require.NoError(t, f.redis.Set(context.Background(), key, `{"status":"IN_PROGRESS"}`, 0).Err())

	resp, err := http.Get(f.srv.URL + "/orders/o-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		ID     string         `json:"id"`
		Status kitchen.Status `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "o-1", body.ID)
	assert.Equal(t, kitchen.StatusInProgress, body.Status)
}

func TestGetOrder_CacheMissImpliesCompleted(t *testing.T) {
	f := newHandlerFixture(t)

	recipeID := int64(1)
	f.orders.orders["o-2"] = kitchen.Order{ID: "o-2", CustomerID: "20", RecipeID: &recipeID}

	resp, err := http.Get(f.srv.URL + "/orders/o-2")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status kitchen.Status `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, kitchen.StatusCompleted, body.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	resp, err := http.Get(f.srv.URL + "/orders/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	f := newHandlerFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
