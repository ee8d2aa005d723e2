package file

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/dukex/flowdesk/pkg/persistence"
)

func (rr *recordRepository[T]) filePath(workflowID string) (string, error) {
	if !isSafeID(workflowID) {
		return "", persistence.NewWorkflowError("records", workflowID, persistence.ErrInvalidWorkflowID)
	}

	return path.Join(rr.dir, workflowID+".json"), nil
}

// list returns the records of one workflow, or of every workflow when workflowID is empty.
func (rr *recordRepository[T]) list(workflowID string) ([]*T, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if workflowID != "" {
		filePath, err := rr.filePath(workflowID)
		if err != nil {
			return nil, err
		}

		return rr.read(filePath)
	}

	files, err := fs.Glob(os.DirFS(rr.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rr.dir, err)
	}

	sort.Strings(files)

	records := make([]*T, 0)

	for _, file := range files {
		part, err := rr.read(path.Join(rr.dir, file))
		if err != nil {
			return nil, err
		}

		records = append(records, part...)
	}

	return records, nil
}

func (rr *recordRepository[T]) append(workflowID string, record *T) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	filePath, err := rr.filePath(workflowID)
	if err != nil {
		return err
	}

	records, err := rr.read(filePath)
	if err != nil {
		return err
	}

	records = append(records, record)

	err = os.MkdirAll(rr.dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", rr.dir, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records for workflow %s: %w", workflowID, err)
	}

	return os.WriteFile(filePath, data, 0600)
}

func (rr *recordRepository[T]) read(filePath string) ([]*T, error) {
	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*T, 0), nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var records []*T

	err = json.Unmarshal(body, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return records, nil
}
