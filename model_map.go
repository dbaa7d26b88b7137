package ogm

import (
	"slices"
	"strings"
	"sync"
)

// ModelMap is the registry of models, keyed by name.
//
// It is populated while models are declared, before concurrent traffic starts,
// and read-only after that. Writes take an exclusive lock so late registration
// is safe, but it is not expected to race with hydration.
type ModelMap struct {
	mu     sync.RWMutex
	names  []string // registration order
	models map[string]*Model
}

// NewModelMap returns an empty registry.
func NewModelMap() *ModelMap {
	return &ModelMap{models: make(map[string]*Model)}
}

// Has reports whether a model called name has been defined.
func (mm *ModelMap) Has(name string) bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	_, ok := mm.models[name]

	return ok
}

// Keys returns the model names in registration order.
func (mm *ModelMap) Keys() []string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return slices.Clone(mm.names)
}

// Get returns the model called name.
func (mm *ModelMap) Get(name string) (*Model, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	m, ok := mm.models[name]
	if !ok {
		return nil, &DefinitionNotFoundError{Kind: "model", Name: name, Defined: slices.Clone(mm.names)}
	}

	return m, nil
}

// Set registers m under its name, replacing any model with the same name.
func (mm *ModelMap) Set(m *Model) *ModelMap {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, ok := mm.models[m.name]; !ok {
		mm.names = append(mm.names, m.name)
	}

	mm.models[m.name] = m

	return mm
}

// Models returns every model in registration order.
func (mm *ModelMap) Models() []*Model {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	out := make([]*Model, len(mm.names))
	for i, name := range mm.names {
		out[i] = mm.models[name]
	}

	return out
}

// GetByLabels returns the model whose label set equals labels exactly,
// regardless of order. There is no best-effort match.
func (mm *ModelMap) GetByLabels(labels ...string) (*Model, error) {
	want := labelKey(labels)

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	for _, name := range mm.names {
		m := mm.models[name]
		if labelKey(m.labels) == want {
			return m, nil
		}
	}

	return nil, &DefinitionNotFoundError{Kind: "labels", Name: want}
}

func labelKey(labels []string) string {
	sorted := slices.Clone(labels)
	slices.Sort(sorted)

	return strings.Join(sorted, ":")
}

// Extend clones the schema of base, merges overrides into it and registers the
// result as a new model called as. The new model carries base's labels, any
// labels listed in overrides, and as. base is left untouched.
func (mm *ModelMap) Extend(base, as string, overrides Schema) (*Model, error) {
	original, err := mm.Get(base)
	if err != nil {
		return nil, err
	}

	schema := original.Schema().merge(overrides)

	m, err := NewModel(as, schema)
	if err != nil {
		return nil, err
	}

	labels := append(original.Labels(), overrides.Labels...)
	m.SetLabels(append(labels, as)...)
	mm.Set(m)

	return m, nil
}
