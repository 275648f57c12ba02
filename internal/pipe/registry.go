package pipe

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vk/heacheck/internal/layer"
)

// Registry holds pipes by name together with a cached copy of their
// metadata. It is not safe for concurrent use.
type Registry struct {
	pipes    map[string]Handle
	metadata map[string]Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pipes:    make(map[string]Handle),
		metadata: make(map[string]Metadata),
	}
}

// Register adds p under name. Registering a name twice is an error; the
// first pipe stays registered.
func (r *Registry) Register(name string, p Handle) error {
	if _, exists := r.pipes[name]; exists {
		return fmt.Errorf("%w: Pipe %s is already registered", ErrDuplicatePipe, name)
	}
	slog.Debug("Registering pipe.", "name", name)
	r.pipes[name] = p
	r.metadata[name] = p.Metadata()
	return nil
}

// MustRegister is like Register but panics on a duplicate name.
func (r *Registry) MustRegister(name string, p Handle) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Get returns the pipe registered under name.
func (r *Registry) Get(name string) (Handle, bool) {
	p, ok := r.pipes[name]
	return p, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.pipes[name]
	return ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.pipes))
	for name := range r.pipes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Metadata returns a copy of the cached metadata of name.
func (r *Registry) Metadata(name string) (Metadata, bool) {
	m, ok := r.metadata[name]
	if !ok {
		return Metadata{}, false
	}
	return m.clone(), true
}

// Unregister removes name and its metadata. It reports whether name was
// registered.
func (r *Registry) Unregister(name string) bool {
	if _, ok := r.pipes[name]; !ok {
		return false
	}
	slog.Debug("Unregistering pipe.", "name", name)
	delete(r.pipes, name)
	delete(r.metadata, name)
	return true
}

// Clear removes every pipe and its metadata.
func (r *Registry) Clear() {
	clear(r.pipes)
	clear(r.metadata)
}

// Len returns the number of registered pipes.
func (r *Registry) Len() int {
	return len(r.pipes)
}

// ByLayer returns the pipes whose metadata layer equals l, ordered by name.
func (r *Registry) ByLayer(l string) []Handle {
	var out []Handle
	for _, name := range r.List() {
		if r.metadata[name].Layer == l {
			out = append(out, r.pipes[name])
		}
	}
	return out
}

// DependencyReport is the outcome of ValidateDependencies.
type DependencyReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err folds the report into a single error, or nil when it is valid.
func (d DependencyReport) Err() error {
	if d.Valid {
		return nil
	}
	return fmt.Errorf("pipe dependency validation failed:\n- %s", strings.Join(d.Errors, "\n- "))
}

// ValidateDependencies checks that every declared dependency names a
// currently registered pipe. Each missing dependency produces one error.
func (r *Registry) ValidateDependencies() DependencyReport {
	errs := []string{}
	for _, name := range r.List() {
		for _, dep := range r.metadata[name].Dependencies {
			if !r.Has(dep) {
				errs = append(errs, fmt.Sprintf("Pipe '%s' depends on unregistered pipe '%s'", name, dep))
			}
		}
	}
	return DependencyReport{Valid: len(errs) == 0, Errors: errs}
}

// DependencyGraph returns a name -> declared dependencies map. The slices
// are copies.
func (r *Registry) DependencyGraph() map[string][]string {
	graph := make(map[string][]string, len(r.metadata))
	for name, m := range r.metadata {
		graph[name] = append([]string{}, m.Dependencies...)
	}
	return graph
}

// ValidateLayering checks every dependency between registered pipes against
// the layer rules, using each pipe's Layer as its layer type. Dependencies
// on unregistered pipes are skipped; ValidateDependencies reports those.
func (r *Registry) ValidateLayering(v *layer.Validator) []layer.DependencyInfo {
	var out []layer.DependencyInfo
	for _, name := range r.List() {
		from := r.layerConfig(name)
		for _, dep := range r.metadata[name].Dependencies {
			if !r.Has(dep) {
				continue
			}
			info := v.ValidateDependencies(from, r.layerConfig(dep))
			info.Type = layer.DependencyPipe
			out = append(out, info)
		}
	}
	return out
}

func (r *Registry) layerConfig(name string) layer.Config {
	m := r.metadata[name]
	t, _ := layer.ParseType(m.Layer)
	return layer.Config{Name: name, Type: t, Version: m.Version}
}
