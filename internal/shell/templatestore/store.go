// Package templatestore persists network templates and dev-environment
// templates as one YAML file per record (C2).
package templatestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/core/template"
)

// ErrNotFound is returned when a named template does not exist in the store.
var ErrNotFound = errors.New("template not found")

// ErrBuiltin is returned by Delete when asked to remove a built-in template.
var ErrBuiltin = errors.New("built-in templates cannot be deleted")

const (
	kindNetwork = "network"
	kindDevEnv  = "devenv"
)

// Store is a file-backed CRUD layer over network templates and
// dev-environment templates. A per-kind RWMutex serializes access to
// each kind's directory (spec.md §5: "serialized per kind via a
// per-kind lock").
type Store struct {
	rootDir string

	networkMu sync.RWMutex
	devEnvMu  sync.RWMutex
}

// New creates a Store rooted at rootDir, seeding it with the built-in
// defaults on first run.
func New(rootDir string) (*Store, error) {
	s := &Store{rootDir: rootDir}
	for _, kind := range []string{kindNetwork, kindDevEnv} {
		if err := os.MkdirAll(filepath.Join(rootDir, kind), 0755); err != nil {
			return nil, fmt.Errorf("create %s template dir: %w", kind, err)
		}
	}
	if err := s.seedBuiltinsIfEmpty(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) kindDir(kind string) string {
	return filepath.Join(s.rootDir, kind)
}

func (s *Store) seedBuiltinsIfEmpty() error {
	s.networkMu.Lock()
	empty, err := dirEmpty(s.kindDir(kindNetwork))
	if err == nil && empty {
		for _, nt := range BuiltinNetworkTemplates() {
			err = writeYAML(filepath.Join(s.kindDir(kindNetwork), nt.Name+".yaml"), nt)
			if err != nil {
				break
			}
		}
	}
	s.networkMu.Unlock()
	if err != nil {
		return err
	}

	s.devEnvMu.Lock()
	defer s.devEnvMu.Unlock()
	empty, err = dirEmpty(s.kindDir(kindDevEnv))
	if err != nil {
		return err
	}
	if empty {
		for _, dt := range BuiltinDevEnvironmentTemplates() {
			if err := writeYAML(filepath.Join(s.kindDir(kindDevEnv), dt.Name+".yaml"), dt); err != nil {
				return err
			}
		}
	}
	return nil
}

func dirEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Network Templates
// =============================================================================

// SaveNetworkTemplate validates and writes a network template, overwriting
// any existing file of the same name (built-ins may be overridden this way,
// never deleted).
func (s *Store) SaveNetworkTemplate(tmpl domain.NetworkTemplate) error {
	if field, msg := template.ValidateNetworkTemplateFields(tmpl); field != "" {
		return fmt.Errorf("invalid network template: %s: %s", field, msg)
	}
	s.networkMu.Lock()
	defer s.networkMu.Unlock()
	return writeYAML(filepath.Join(s.kindDir(kindNetwork), tmpl.Name+".yaml"), tmpl)
}

// GetNetworkTemplate loads a network template by name.
func (s *Store) GetNetworkTemplate(name string) (domain.NetworkTemplate, error) {
	s.networkMu.RLock()
	defer s.networkMu.RUnlock()

	var tmpl domain.NetworkTemplate
	data, err := os.ReadFile(filepath.Join(s.kindDir(kindNetwork), name+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return tmpl, ErrNotFound
		}
		return tmpl, err
	}
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return tmpl, err
	}
	return tmpl, nil
}

// ListNetworkTemplates returns every stored network template, sorted by name.
func (s *Store) ListNetworkTemplates() ([]domain.NetworkTemplate, error) {
	s.networkMu.RLock()
	defer s.networkMu.RUnlock()
	return listTemplates[domain.NetworkTemplate](s.kindDir(kindNetwork))
}

// DeleteNetworkTemplate removes a user-defined network template. Built-in
// templates can never be deleted, only overridden via SaveNetworkTemplate.
func (s *Store) DeleteNetworkTemplate(name string) error {
	if isBuiltinNetworkName(name) {
		return ErrBuiltin
	}
	s.networkMu.Lock()
	defer s.networkMu.Unlock()
	return deleteFile(filepath.Join(s.kindDir(kindNetwork), name+".yaml"))
}

// =============================================================================
// Dev-Environment Templates
// =============================================================================

// SaveDevEnvironmentTemplate validates and writes a dev-environment template.
func (s *Store) SaveDevEnvironmentTemplate(tmpl domain.DevEnvironmentTemplate) error {
	if field, msg := template.ValidateDevEnvironmentTemplateFields(tmpl); field != "" {
		return fmt.Errorf("invalid dev-environment template: %s: %s", field, msg)
	}
	s.devEnvMu.Lock()
	defer s.devEnvMu.Unlock()
	return writeYAML(filepath.Join(s.kindDir(kindDevEnv), tmpl.Name+".yaml"), tmpl)
}

// GetDevEnvironmentTemplate loads a dev-environment template by name.
func (s *Store) GetDevEnvironmentTemplate(name string) (domain.DevEnvironmentTemplate, error) {
	s.devEnvMu.RLock()
	defer s.devEnvMu.RUnlock()

	var tmpl domain.DevEnvironmentTemplate
	data, err := os.ReadFile(filepath.Join(s.kindDir(kindDevEnv), name+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return tmpl, ErrNotFound
		}
		return tmpl, err
	}
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return tmpl, err
	}
	return tmpl, nil
}

// ListDevEnvironmentTemplates returns every stored dev-environment
// template, sorted by name.
func (s *Store) ListDevEnvironmentTemplates() ([]domain.DevEnvironmentTemplate, error) {
	s.devEnvMu.RLock()
	defer s.devEnvMu.RUnlock()
	return listTemplates[domain.DevEnvironmentTemplate](s.kindDir(kindDevEnv))
}

// DeleteDevEnvironmentTemplate removes a user-defined dev-environment template.
func (s *Store) DeleteDevEnvironmentTemplate(name string) error {
	if isBuiltinDevEnvName(name) {
		return ErrBuiltin
	}
	s.devEnvMu.Lock()
	defer s.devEnvMu.Unlock()
	return deleteFile(filepath.Join(s.kindDir(kindDevEnv), name+".yaml"))
}

// =============================================================================
// Shared Helpers
// =============================================================================

func listTemplates[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
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

	result := make([]T, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func deleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
