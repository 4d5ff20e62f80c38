package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileCatalog loads task descriptors from JSON files on disk. Each
// DSL's tasks live in <dir>/<dsl>_tasks.json holding a JSON array of
// descriptors. Files are read on every lookup so the catalog holds no
// mutable state.
type FileCatalog struct {
	dir string
}

// NewFileCatalog returns a catalog rooted at the given directory
func NewFileCatalog(dir string) (*FileCatalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("file catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("file catalog: %v is not a directory", dir)
	}
	return &FileCatalog{dir: dir}, nil
}

// LoadTask reads the DSL's task file and returns the descriptor with
// the matching ID
func (f *FileCatalog) LoadTask(dslName, taskID string) (Descriptor, error) {
	path := filepath.Join(f.dir, dslName+"_tasks.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("load task: %w", err)
	}

	var tasks []Descriptor
	if err := json.Unmarshal(data, &tasks); err != nil {
		return Descriptor{}, fmt.Errorf("load task: malformed task file "+
			"%v: %w", path, err)
	}

	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return Descriptor{}, fmt.Errorf("load task: unknown task %q for DSL %q",
		taskID, dslName)
}
