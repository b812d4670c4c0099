// Package catalog exposes the fixed classification lists used by plan forms:
// origins, the sub-origins allowed under each, their goals, and areas.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var raw []byte

// SubOrigin is a sub-category of an origin with its suggested goals.
type SubOrigin struct {
	Name  string   `yaml:"name" json:"name"`
	Goals []string `yaml:"goals,omitempty" json:"goals,omitempty"`
}

// Origin is a top-level plan classification.
type Origin struct {
	ID         string      `yaml:"id" json:"id"`
	Label      string      `yaml:"label" json:"label"`
	SubOrigins []SubOrigin `yaml:"sub_origins" json:"subOrigins"`
}

// Catalog is the parsed classification data.
type Catalog struct {
	Origins []Origin `yaml:"origins" json:"origins"`
	Areas   []string `yaml:"areas" json:"areas"`
}

var (
	once    sync.Once
	loaded  *Catalog
	loadErr error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	once.Do(func() {
		loaded, loadErr = Parse(raw)
	})
	return loaded, loadErr
}

// Parse decodes catalog YAML and checks that origin IDs are unique.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Origins))
	for _, o := range c.Origins {
		if o.ID == "" {
			return nil, fmt.Errorf("parse catalog: origin %q has no id", o.Label)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("parse catalog: duplicate origin %q", o.ID)
		}
		seen[o.ID] = true
	}
	return &c, nil
}

// Origin returns the origin with the given id.
func (c *Catalog) Origin(id string) (Origin, bool) {
	for _, o := range c.Origins {
		if o.ID == id {
			return o, true
		}
	}
	return Origin{}, false
}

// ValidOrigin reports whether id names a known origin.
func (c *Catalog) ValidOrigin(id string) bool {
	_, ok := c.Origin(id)
	return ok
}

// ValidSubOrigin reports whether sub is allowed under origin. An empty sub
// is always allowed.
func (c *Catalog) ValidSubOrigin(origin, sub string) bool {
	if sub == "" {
		return true
	}
	o, ok := c.Origin(origin)
	if !ok {
		return false
	}
	for _, s := range o.SubOrigins {
		if s.Name == sub {
			return true
		}
	}
	return false
}
