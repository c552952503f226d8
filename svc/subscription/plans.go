package subscription

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultCatalog []byte

// Tier is one entry of the plan catalog.
type Tier struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	GemsLimit int    `yaml:"gems_limit"`
}

// Catalog maps tier ids to gem limits. It is immutable after loading.
type Catalog struct {
	tiers       map[string]Tier
	defaultTier string
}

type catalogFile struct {
	Default string `yaml:"default"`
	Plans   []Tier `yaml:"plans"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("subscription: embedded plan catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from path, or returns the built-in one when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. The default tier must be listed.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("%w: no plans defined", ErrInvalidCatalog)
	}

	c := &Catalog{tiers: make(map[string]Tier, len(f.Plans))}
	for _, t := range f.Plans {
		t.ID = strings.ToLower(strings.TrimSpace(t.ID))
		if t.ID == "" {
			return nil, fmt.Errorf("%w: plan without id", ErrInvalidCatalog)
		}
		if _, dup := c.tiers[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, t.ID)
		}
		if t.GemsLimit < -1 {
			return nil, fmt.Errorf("%w: plan %q has limit %d", ErrInvalidCatalog, t.ID, t.GemsLimit)
		}
		c.tiers[t.ID] = t
	}

	c.defaultTier = strings.ToLower(strings.TrimSpace(f.Default))
	if c.defaultTier == "" {
		c.defaultTier = strings.ToLower(f.Plans[0].ID)
	}
	if _, ok := c.tiers[c.defaultTier]; !ok {
		return nil, fmt.Errorf("%w: default plan %q is not listed", ErrInvalidCatalog, c.defaultTier)
	}
	return c, nil
}

// Default returns the tier granted by a completed order.
func (c *Catalog) Default() Tier {
	return c.tiers[c.defaultTier]
}

// Tier returns the named tier, falling back to the default one.
func (c *Catalog) Tier(id string) Tier {
	if t, ok := c.tiers[strings.ToLower(strings.TrimSpace(id))]; ok {
		return t
	}
	return c.Default()
}

// IDs lists the tier ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.tiers))
	for id := range c.tiers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
