package kitchen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// RecipeLister is the read side of the recipe store.
type RecipeLister interface {
	ListRecipes(ctx context.Context) ([]Recipe, error)
}

// Catalog is a read-through cache over the recipe store. Recipes are owned
// by an external catalog process and never mutated here, so the cache has no
// expiry: it loads once and holds the list until Refresh is called (or the
// process restarts). This avoids a catalog query per order.
type Catalog struct {
	store RecipeLister

	mu      sync.RWMutex
	recipes []Recipe
	loaded  bool
}

func NewCatalog(store RecipeLister) *Catalog {
	return &Catalog{store: store}
}

// List returns the cached catalog, loading it from the store on first use.
func (c *Catalog) List(ctx context.Context) ([]Recipe, error) {
	c.mu.RLock()
	if c.loaded {
		recipes := c.recipes
		c.mu.RUnlock()
		return recipes, nil
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recipes, nil
}

// Refresh reloads the catalog from the store. This is the only invalidation
// path; it is exposed over HTTP for manual use after catalog changes.
func (c *Catalog) Refresh(ctx context.Context) error {
	recipes, err := c.store.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecipeUnavailable, err)
	}

	c.mu.Lock()
	c.recipes = recipes
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// PickRandom returns one recipe chosen uniformly over the catalog. Callers
// must re-invoke it per order so orders in one batch can get different
// recipes. An empty catalog is ErrRecipeUnavailable.
func (c *Catalog) PickRandom(ctx context.Context) (Recipe, error) {
	recipes, err := c.List(ctx)
	if err != nil {
		return Recipe{}, err
	}
	if len(recipes) == 0 {
		return Recipe{}, ErrRecipeUnavailable
	}
	return recipes[rand.IntN(len(recipes))], nil
}
