package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedFormat is returned when no registered format matches a header.
var ErrUnsupportedFormat = errors.New("file format not supported")

// ErrUnknownFormat is returned when a format key is not registered.
var ErrUnknownFormat = errors.New("unknown format")

// Registry is an ordered set of format definitions.
// Registration order is the detection tie-break.
type Registry struct {
	mu    sync.RWMutex
	defs  []FormatDefinition
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a format definition to the registry.
// Panics if the key is already registered or the mapping lacks a name or
// secret column.
func (r *Registry) Register(def FormatDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Info.Key == "" {
		panic("format key is required")
	}
	if _, exists := r.index[def.Info.Key]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Info.Key))
	}
	if _, ok := def.Column(FieldName); !ok {
		panic(fmt.Sprintf("format %s: no column mapped to %s", def.Info.Key, FieldName))
	}
	if _, ok := def.Column(FieldSecretClear); !ok {
		panic(fmt.Sprintf("format %s: no column mapped to %s", def.Info.Key, FieldSecretClear))
	}
	if _, ok := def.Column(FieldTOTP); ok && def.TOTP == nil {
		panic(fmt.Sprintf("format %s: totp column mapped without an adapter", def.Info.Key))
	}

	// Populate Columns from the mapping if not set
	if len(def.Info.Columns) == 0 {
		def.Info.Columns = def.HeaderColumns()
	}

	r.index[def.Info.Key] = len(r.defs)
	r.defs = append(r.defs, def)
}

// Get returns a format definition by key.
func (r *Registry) Get(key string) (FormatDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[key]
	if !ok {
		return FormatDefinition{}, false
	}
	return r.defs[i], true
}

// All returns every registered definition in registration order.
func (r *Registry) All() []FormatDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FormatDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Count returns the number of registered formats.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// DetectionScore is one format's score against a header.
type DetectionScore struct {
	Key   string `json:"key"`
	Score int    `json:"score"`
}

// Scores returns every format's score, in registration order.
func (r *Registry) Scores(header []string) []DetectionScore {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scores := make([]DetectionScore, len(r.defs))
	for i, def := range r.defs {
		scores[i] = DetectionScore{Key: def.Info.Key, Score: def.CanDetect(header)}
	}
	return scores
}

// Detect returns the format with the highest non-zero score for the header.
// Ties go to the format registered first.
func (r *Registry) Detect(header []string) (FormatDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestScore := -1, 0
	for i, def := range r.defs {
		if score := def.CanDetect(header); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return FormatDefinition{}, ErrUnsupportedFormat
	}
	return r.defs[best], nil
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the package-level registry populated at init time.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a format definition to the default registry.
func Register(def FormatDefinition) {
	defaultRegistry.Register(def)
}

// Get returns a format definition from the default registry.
func Get(key string) (FormatDefinition, bool) {
	return defaultRegistry.Get(key)
}

// All returns all formats of the default registry in registration order.
func All() []FormatDefinition {
	return defaultRegistry.All()
}

// FormatCount returns the number of formats in the default registry.
func FormatCount() int {
	return defaultRegistry.Count()
}
