package recipe

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

// fileRecipe is the on-disk shape of one recipe in an extension file.
type fileRecipe struct {
	Name   string   `yaml:"name"`
	Steps  []string `yaml:"steps"`
	Videos []string `yaml:"videos"`
}

// LoadFile reads a YAML list of recipes and adds them to the catalog.
// Entries without a name or without steps are rejected.
func (c *MemoryCatalog) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading recipe file: %w", err)
	}
	recipes, err := parseRecipes(data)
	if err != nil {
		return 0, fmt.Errorf("parsing recipe file %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range recipes {
		c.add(r)
	}
	c.log.Info("loaded %d recipes from %s", len(recipes), path)
	return len(recipes), nil
}

func parseRecipes(data []byte) ([]*domain.Recipe, error) {
	var raw []fileRecipe
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make([]*domain.Recipe, 0, len(raw))
	for i, fr := range raw {
		name := strings.ToLower(strings.TrimSpace(fr.Name))
		if name == "" {
			return nil, fmt.Errorf("recipe %d: missing name", i)
		}
		if strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("recipe %q: name must be a single word", name)
		}
		if len(fr.Steps) == 0 {
			return nil, fmt.Errorf("recipe %q: no steps", name)
		}
		out = append(out, &domain.Recipe{Name: name, Steps: fr.Steps, VideoURLs: fr.Videos})
	}
	return out, nil
}
