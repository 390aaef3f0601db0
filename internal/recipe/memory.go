// Package recipe provides the recipe catalog.
package recipe

import (
	"context"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeCatalog = (*MemoryCatalog)(nil)

// MemoryCatalog holds recipes in memory, keyed by lower-case dish name and
// kept in insertion order. Safe for concurrent reads.
type MemoryCatalog struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	order   []string
	log     *logger.Logger
}

// NewMemoryCatalog creates a catalog preloaded with the built-in recipes.
func NewMemoryCatalog(log *logger.Logger) *MemoryCatalog {
	c := &MemoryCatalog{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	c.seed()
	return c
}

// Names returns the dish names in insertion order.
func (c *MemoryCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// List returns summaries of all recipes in insertion order.
func (c *MemoryCatalog) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.log.Debug("listing all recipes, count=%d", len(c.order))

	out := make([]domain.RecipeSummary, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, summarize(c.recipes[name]))
	}
	return out, nil
}

// Get returns a recipe by dish name. Lookup is case-insensitive.
func (c *MemoryCatalog) Get(ctx context.Context, name string) (*domain.Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.recipes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		c.log.Debug("recipe not found: %s", name)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Search returns recipes whose name or steps contain the query.
func (c *MemoryCatalog) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.RecipeSummary
	for _, name := range c.order {
		r := c.recipes[name]
		if matches(r, q) {
			out = append(out, summarize(r))
		}
	}
	c.log.Debug("search %q: %d results", query, len(out))
	return out, nil
}

// Add inserts a recipe. A recipe with an existing name replaces the old
// one in place; new names are appended.
func (c *MemoryCatalog) Add(r *domain.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(r)
}

func (c *MemoryCatalog) add(r *domain.Recipe) {
	key := strings.ToLower(r.Name)
	if _, ok := c.recipes[key]; !ok {
		c.order = append(c.order, key)
	}
	c.recipes[key] = r
}

func matches(r *domain.Recipe, q string) bool {
	if q == "" || strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, step := range r.Steps {
		if strings.Contains(strings.ToLower(step), q) {
			return true
		}
	}
	return false
}

func summarize(r *domain.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{Name: r.Name, Steps: len(r.Steps), Videos: len(r.VideoURLs)}
}

func youtube(id string) string {
	return "https://youtu.be/" + id + "?feature=shared"
}

// seed loads the built-in recipes.
func (c *MemoryCatalog) seed() {
	c.add(&domain.Recipe{
		Name: "pasta",
		Steps: []string{
			"Boil a pot of water with a pinch of salt.",
			"Add pasta and cook for 8-10 minutes until al dente.",
			"Drain the pasta, reserving 1 cup of pasta water.",
			"Mix with your favorite sauce (e.g., marinara or pesto).",
			"Serve hot with grated Parmesan cheese.",
		},
		VideoURLs: []string{youtube("UfvrcHzv4TQ")},
	})
	c.add(&domain.Recipe{
		Name: "chicken",
		Steps: []string{
			"Preheat oven to 375°F (190°C).",
			"Season chicken breasts with salt, pepper, and olive oil.",
			"Place chicken in a baking dish and bake for 25-30 minutes.",
			"Check internal temperature reaches 165°F (74°C).",
			"Let rest for 5 minutes before serving.",
		},
		VideoURLs: []string{youtube("O5MvIQidUVA")},
	})
	c.add(&domain.Recipe{
		Name: "pizza",
		Steps: []string{
			"Preheat oven to 450°F (230°C).",
			"Roll out pizza dough on a floured surface.",
			"Spread tomato sauce, add cheese, and desired toppings.",
			"Bake for 10-12 minutes until crust is golden.",
			"Slice and serve hot.",
		},
		VideoURLs: []string{youtube("twVKZ5nskto")},
	})
	c.add(&domain.Recipe{
		Name: "salad",
		Steps: []string{
			"Wash and chop lettuce, tomatoes, cucumbers, and red onions.",
			"Toss vegetables in a large bowl.",
			"Add olive oil, balsamic vinegar, salt, and pepper to taste.",
			"Top with croutons or nuts if desired.",
			"Serve fresh.",
		},
		VideoURLs: []string{youtube("fK6ED8jUvs4")},
	})
	c.add(&domain.Recipe{
		Name: "cake",
		Steps: []string{
			"Preheat oven to 350°F (175°C).",
			"Mix flour, sugar, baking powder, eggs, butter, and vanilla extract.",
			"Pour batter into a greased cake pan.",
			"Bake for 25-30 minutes until a toothpick comes out clean.",
			"Let cool and decorate with frosting.",
		},
		VideoURLs: []string{youtube("qtlhdIfojmc")},
	})
	c.add(&domain.Recipe{
		Name: "soup",
		Steps: []string{
			"Chop onions, carrots, and celery.",
			"Sauté vegetables in a pot with olive oil.",
			"Add broth, tomatoes, and spices; simmer for 20 minutes.",
			"Add noodles or beans if desired.",
			"Serve hot with bread.",
		},
		VideoURLs: []string{youtube("rdzr91gvNU0")},
	})
	c.log.Debug("seeded %d recipes", len(c.order))
}
