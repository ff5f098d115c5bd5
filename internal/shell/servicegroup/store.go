// Package servicegroup persists ServiceGroup records as one YAML file per
// group (spec.md §6: "<service_groups_dir>/<name>.<ext>"), the service
// half of template store's kind-per-directory pattern.
package servicegroup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// ErrNotFound is returned when a named service group does not exist.
var ErrNotFound = errors.New("service group not found")

// ErrExists is returned by Create when the name is already taken.
var ErrExists = errors.New("service group already exists")

// Store is a file-backed CRUD layer over ServiceGroup records, one YAML
// file per group, serialized with a single RWMutex.
type Store struct {
	mu      sync.RWMutex
	rootDir string
}

// New creates a Store rooted at rootDir.
func New(rootDir string) (*Store, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("create service group store dir: %w", err)
	}
	return &Store{rootDir: rootDir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.rootDir, name+".yaml")
}

// Create writes a new group. Returns ErrExists if the name is taken.
func (s *Store) Create(group *domain.ServiceGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(group.Name)); err == nil {
		return ErrExists
	}
	return writeYAML(s.path(group.Name), group)
}

// Save overwrites an existing group's record, creating it if absent.
func (s *Store) Save(group *domain.ServiceGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeYAML(s.path(group.Name), group)
}

// Get loads one group by name.
func (s *Store) Get(name string) (*domain.ServiceGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readYAML(s.path(name))
}

// Delete removes a group from the store.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// List returns every stored group, sorted by name.
func (s *Store) List() ([]*domain.ServiceGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.rootDir)
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

	out := make([]*domain.ServiceGroup, 0, len(names))
	for _, name := range names {
		group, err := readYAML(filepath.Join(s.rootDir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readYAML(path string) (*domain.ServiceGroup, error) {
	group := &domain.ServiceGroup{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, group); err != nil {
		return nil, err
	}
	return group, nil
}
