// Package category provides the category catalog used to label transactions
// and budgets. Category IDs are free-form; unknown IDs resolve to a fallback
// entry instead of an error.
package category

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fallback display values for unknown categories.
const (
	FallbackIcon  = "📦"
	FallbackColor = "#6B7280"
)

// Info describes how a category is displayed.
type Info struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Icon  string `yaml:"icon" json:"icon"`
	Color string `yaml:"color" json:"color"`
}

// CatalogConfig is the YAML layout of a catalog file.
type CatalogConfig struct {
	Expense []Info `yaml:"expense" json:"expense"`
	Income  []Info `yaml:"income" json:"income"`
}

// Catalog resolves category IDs to display information.
type Catalog struct {
	config CatalogConfig
	byID   map[string]Info
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(CatalogConfig{
		Expense: []Info{
			{ID: "housing", Name: "Housing", Icon: "🏠", Color: "#8B5CF6"},
			{ID: "food", Name: "Food & Dining", Icon: "🍔", Color: "#F59E0B"},
			{ID: "transportation", Name: "Transportation", Icon: "🚗", Color: "#3B82F6"},
			{ID: "utilities", Name: "Utilities", Icon: "💡", Color: "#10B981"},
			{ID: "entertainment", Name: "Entertainment", Icon: "🎬", Color: "#EC4899"},
			{ID: "healthcare", Name: "Healthcare", Icon: "🏥", Color: "#EF4444"},
			{ID: "shopping", Name: "Shopping", Icon: "🛍️", Color: "#F97316"},
			{ID: "personal", Name: "Personal", Icon: "👤", Color: "#6366F1"},
			{ID: "education", Name: "Education", Icon: "📚", Color: "#14B8A6"},
			{ID: "other-expense", Name: "Other", Icon: "📦", Color: "#6B7280"},
		},
		Income: []Info{
			{ID: "salary", Name: "Salary", Icon: "💼", Color: "#10B981"},
			{ID: "freelance", Name: "Freelance", Icon: "💻", Color: "#8B5CF6"},
			{ID: "investments", Name: "Investments", Icon: "📈", Color: "#3B82F6"},
			{ID: "rental", Name: "Rental Income", Icon: "🏘️", Color: "#F59E0B"},
			{ID: "gifts", Name: "Gifts", Icon: "🎁", Color: "#EC4899"},
			{ID: "other-income", Name: "Other Income", Icon: "💰", Color: "#10B981"},
		},
	})
}

// New builds a catalog from a configuration.
func New(config CatalogConfig) *Catalog {
	c := &Catalog{
		config: config,
		byID:   make(map[string]Info),
	}
	c.buildIndex()
	return c
}

// Load reads a catalog from a YAML file.
// An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config CatalogConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(config.Expense) == 0 && len(config.Income) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no categories", path)
	}

	return New(config), nil
}

func (c *Catalog) buildIndex() {
	for _, info := range c.config.Expense {
		c.byID[info.ID] = info
	}
	// Income entries never shadow an expense entry with the same ID.
	for _, info := range c.config.Income {
		if _, ok := c.byID[info.ID]; !ok {
			c.byID[info.ID] = info
		}
	}
}

// Lookup returns the display information for id, falling back to the ID
// itself with the generic icon and color.
func (c *Catalog) Lookup(id string) Info {
	if info, ok := c.byID[id]; ok {
		return info
	}
	return Info{ID: id, Name: id, Icon: FallbackIcon, Color: FallbackColor}
}

// Has reports whether id is a known category.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Expense returns the expense categories in catalog order.
func (c *Catalog) Expense() []Info {
	return append([]Info(nil), c.config.Expense...)
}

// Income returns the income categories in catalog order.
func (c *Catalog) Income() []Info {
	return append([]Info(nil), c.config.Income...)
}

// Config returns a copy of the catalog configuration.
func (c *Catalog) Config() CatalogConfig {
	return CatalogConfig{Expense: c.Expense(), Income: c.Income()}
}
