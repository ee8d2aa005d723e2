// Package collection keeps the authoritative in-memory list of workflows by reconciling the
// local cache with the remote service.
package collection

import (
	"github.com/dukex/flowdesk/pkg/models"
)

// Merge reconciles a cached collection with a remote one.
//
// The result starts as a copy of remote, without nil entries and keeping only the first
// entry of a repeated id. Local-only cached entries are appended unless their id is already
// present. Any other cached entry is appended when the remote list lacks it, and replaces
// the remote copy in place only when its UpdatedAt is strictly newer.
// Inputs are never mutated.
func Merge(cached, remote []*models.Workflow) []*models.Workflow {
	merged := make([]*models.Workflow, 0, len(remote)+len(cached))
	index := make(map[string]int, len(remote)+len(cached))

	for _, workflow := range remote {
		if workflow == nil {
			continue
		}

		if _, seen := index[workflow.ID]; seen {
			continue
		}

		index[workflow.ID] = len(merged)
		merged = append(merged, workflow.Clone())
	}

	for _, entry := range cached {
		if entry == nil {
			continue
		}

		at, present := index[entry.ID]

		switch {
		case entry.IsLocal():
			if present {
				continue
			}
		case present:
			if entry.UpdatedTime().After(merged[at].UpdatedTime()) {
				merged[at] = entry.Clone()
			}

			continue
		}

		index[entry.ID] = len(merged)
		merged = append(merged, entry.Clone())
	}

	return merged
}
