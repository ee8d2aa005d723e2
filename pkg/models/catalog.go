package models

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog holds the trigger and action palettes.
type Catalog struct {
	TriggerEntries []CatalogEntry `json:"triggers" yaml:"triggers"`
	ActionEntries  []CatalogEntry `json:"actions"  yaml:"actions"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the palette embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = ParseCatalog(catalogYAML)
	})

	return defaultCatalog, defaultCatalogErr
}

// ParseCatalog decodes a YAML palette. Every action must name a known step type.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for _, action := range catalog.ActionEntries {
		if !StepType(action.Type).IsValid() {
			return nil, fmt.Errorf("catalog action %q: %w", action.Type, ErrUnknownStepType)
		}
	}

	return &catalog, nil
}

func (c *Catalog) Triggers() []CatalogEntry {
	return append([]CatalogEntry(nil), c.TriggerEntries...)
}

func (c *Catalog) Actions() []CatalogEntry {
	return append([]CatalogEntry(nil), c.ActionEntries...)
}

// Trigger looks up a trigger palette entry by type.
func (c *Catalog) Trigger(triggerType string) (CatalogEntry, bool) {
	return lookup(c.TriggerEntries, triggerType)
}

// Action looks up an action palette entry by type.
func (c *Catalog) Action(actionType string) (CatalogEntry, bool) {
	return lookup(c.ActionEntries, actionType)
}

func lookup(entries []CatalogEntry, entryType string) (CatalogEntry, bool) {
	for _, entry := range entries {
		if entry.Type == entryType {
			return entry, true
		}
	}

	return CatalogEntry{}, false
}
