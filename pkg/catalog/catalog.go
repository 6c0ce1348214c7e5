// Package catalog holds the hosted face models the service knows about and
// the coordinate system each of them reports in.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"LandmarkGolang/pkg/landmark"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var embedded []byte

type Recommended struct {
	Name        string `yaml:"name" json:"name"`
	Model       string `yaml:"model" json:"model"`
	Description string `yaml:"description" json:"description"`
}

type Model struct {
	Key         string                    `yaml:"-" json:"key"`
	Model       string                    `yaml:"model" json:"model"`
	Version     string                    `yaml:"version,omitempty" json:"version,omitempty"`
	Description string                    `yaml:"description" json:"description"`
	Features    []string                  `yaml:"features" json:"features"`
	Coordinates landmark.CoordinateSystem `yaml:"coordinates" json:"coordinates"`
}

// Ref is the reference Replicate accepts, pinned when a version is known.
func (m Model) Ref() string {
	if m.Version == "" {
		return m.Model
	}
	return m.Model + ":" + m.Version
}

type Catalog struct {
	Recommended []Recommended    `yaml:"recommended"`
	Models      map[string]Model `yaml:"models"`
}

func Load() (*Catalog, error) {
	return Parse(embedded)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse model catalogue: %w", err)
	}

	for key, m := range c.Models {
		if m.Model == "" {
			return nil, fmt.Errorf("model catalogue entry %q has no model", key)
		}
		coords, err := landmark.ParseCoordinateSystem(string(m.Coordinates))
		if err != nil {
			return nil, fmt.Errorf("model catalogue entry %q: %w", key, err)
		}
		m.Key = key
		m.Coordinates = coords
		c.Models[key] = m
	}
	return &c, nil
}

// Lookup finds the entry for a model reference, ignoring any ":version".
func (c *Catalog) Lookup(ref string) (Model, bool) {
	name, _, _ := strings.Cut(ref, ":")
	for _, key := range c.keys() {
		if m := c.Models[key]; m.Model == name {
			return m, true
		}
	}
	return Model{}, false
}

// List returns the catalogue entries ordered by key.
func (c *Catalog) List() []Model {
	models := make([]Model, 0, len(c.Models))
	for _, key := range c.keys() {
		models = append(models, c.Models[key])
	}
	return models
}

func (c *Catalog) keys() []string {
	keys := make([]string, 0, len(c.Models))
	for key := range c.Models {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
