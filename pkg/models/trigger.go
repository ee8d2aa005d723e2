package models

import "maps"

// Trigger is the event that starts a workflow. It is picked from the catalog and
// stored inline on the workflow, never on its own.
type Trigger struct {
	Type   string         `json:"type"             validate:"required"`
	Name   string         `json:"name"`
	Config map[string]any `json:"config,omitempty"`
}

func (t *Trigger) Clone() *Trigger {
	if t == nil {
		return nil
	}

	clone := *t
	if t.Config != nil {
		clone.Config = maps.Clone(t.Config)
	}

	return &clone
}
