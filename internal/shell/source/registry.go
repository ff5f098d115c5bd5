// Package source manages the registered dependency source pool (C7): a
// file-backed registry of DependencySource records, a health prober, and
// an installer adapter dispatch, sitting on top of the pure selection
// algorithm in internal/core/source.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/artpar/smoothstack/internal/core/domain"
	coresource "github.com/artpar/smoothstack/internal/core/source"
)

// ErrNotFound is returned when a named source does not exist in the registry.
var ErrNotFound = errors.New("dependency source not found")

// ErrExists is returned by Register when the name is already taken.
var ErrExists = errors.New("dependency source already registered")

// Registry is a file-backed CRUD layer over DependencySource records, one
// YAML file per source, serialized with a single RWMutex (spec.md §5: the
// whole pool is small enough that per-kind locking buys nothing extra).
type Registry struct {
	mu      sync.RWMutex
	rootDir string
}

// NewRegistry creates a Registry rooted at rootDir.
func NewRegistry(rootDir string) (*Registry, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("create source registry dir: %w", err)
	}
	return &Registry{rootDir: rootDir}, nil
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.rootDir, name+".yaml")
}

// Register adds a new source. Returns ErrExists if name is already taken.
func (r *Registry) Register(src domain.DependencySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path(src.Name)); err == nil {
		return ErrExists
	}
	if src.Status == "" {
		src.Status = domain.SourceUnknown
	}
	return writeYAML(r.path(src.Name), src)
}

// Update overwrites an existing source's record, creating it if absent.
func (r *Registry) Update(src domain.DependencySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeYAML(r.path(src.Name), src)
}

// Get loads one source by name.
func (r *Registry) Get(name string) (domain.DependencySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return readYAML(r.path(name))
}

// Delete removes a source from the registry.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// List returns every registered source, sorted by name.
func (r *Registry) List() ([]domain.DependencySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.rootDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]domain.DependencySource, 0, len(names))
	for _, name := range names {
		src, err := readYAML(filepath.Join(r.rootDir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// Select runs the pure best-source algorithm (internal/core/source.Select)
// over every source matching ecosystem and group, taking a read-snapshot
// of the registry before releasing the lock (spec.md §5).
func (r *Registry) Select(ecosystem domain.Ecosystem, group string) (*coresource.SelectResult, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	return coresource.Select(coresource.SelectRequest{Sources: all, Ecosystem: ecosystem, Group: group})
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readYAML(path string) (domain.DependencySource, error) {
	var src domain.DependencySource
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return src, ErrNotFound
		}
		return src, err
	}
	if err := yaml.Unmarshal(data, &src); err != nil {
		return src, err
	}
	return src, nil
}
