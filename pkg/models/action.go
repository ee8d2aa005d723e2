package models

// CatalogEntry is a read-only palette item from which triggers and steps are instantiated.
type CatalogEntry struct {
	Type        string `json:"type"        yaml:"type"`
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon"        yaml:"icon"`
}

// NewTrigger builds a workflow trigger from a trigger palette entry.
func (e CatalogEntry) NewTrigger() *Trigger {
	return &Trigger{
		Type: e.Type,
		Name: e.Name,
	}
}
