// Package task defines task descriptors and the catalogs they are
// loaded from. A task names a target: the expected output a generated
// program must produce. Descriptors are read-only for the lifetime of
// a training run.
package task

import "fmt"

// Descriptor describes one program-generation task
type Descriptor struct {
	// ID identifies the task within its DSL's catalog
	ID string `json:"id"`

	// Code is the source program template the task was derived from,
	// if any
	Code string `json:"code"`

	// ExpectedOutput is the output a correct program must produce
	ExpectedOutput string `json:"expected_output"`

	// Description is a human-readable summary of the task
	Description string `json:"description"`
}

// Catalog loads task descriptors. Catalogs are immutable and passed
// explicitly through constructors; there is no ambient global lookup.
type Catalog interface {
	// LoadTask returns the descriptor for the given DSL and task ID.
	// An unknown DSL or task ID is a configuration error.
	LoadTask(dslName, taskID string) (Descriptor, error)
}

// MemCatalog is an in-memory Catalog, keyed by DSL name then task ID
type MemCatalog struct {
	tasks map[string]map[string]Descriptor
}

// NewMemCatalog returns an empty in-memory catalog
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tasks: make(map[string]map[string]Descriptor)}
}

// Add registers a descriptor under the given DSL name
func (m *MemCatalog) Add(dslName string, d Descriptor) {
	if m.tasks[dslName] == nil {
		m.tasks[dslName] = make(map[string]Descriptor)
	}
	m.tasks[dslName][d.ID] = d
}

// LoadTask returns the registered descriptor for the DSL and task ID
func (m *MemCatalog) LoadTask(dslName, taskID string) (Descriptor, error) {
	d, ok := m.tasks[dslName][taskID]
	if !ok {
		return Descriptor{}, fmt.Errorf("load task: unknown task %q for "+
			"DSL %q", taskID, dslName)
	}
	return d, nil
}
