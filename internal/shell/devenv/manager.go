// Package devenv instantiates long-lived development containers from
// DevEnvironmentTemplate records and emits `.devcontainer/devcontainer.json`
// editor metadata (C6).
package devenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	coredevenv "github.com/artpar/smoothstack/internal/core/devenv"
	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/shell/engine"
	"github.com/artpar/smoothstack/internal/shell/templatestore"
)

// ErrTemplateNotFound is returned when Create is asked for an unknown template.
var ErrTemplateNotFound = templatestore.ErrNotFound

// CreateOptions controls what Create actually does, per spec.md §4.6.
type CreateOptions struct {
	CreateEditorMetadata bool // default true
	StartContainer       bool // default true
	PullImage            bool
	Environment          map[string]string // option wins over template env
	RemoteUser            string
}

// DefaultCreateOptions returns the spec's documented defaults.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{CreateEditorMetadata: true, StartContainer: true}
}

// Manager instantiates dev environments from templates stored in a
// templatestore.Store, against a container engine client.
type Manager struct {
	store  *templatestore.Store
	client engine.Client
	logger *slog.Logger
}

// New builds a Manager bound to store and client.
func New(store *templatestore.Store, client engine.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, client: client, logger: logger.With("component", "devenv")}
}

// Create resolves templateName, optionally emits the devcontainer.json
// manifest under projectDir, and optionally creates and starts the
// container. Returns a human-readable message alongside success, per
// spec.md §4.6 step 4.
func (m *Manager) Create(templateName, containerName, projectDir string, opts CreateOptions) (bool, string) {
	tmpl, err := m.store.GetDevEnvironmentTemplate(templateName)
	if err != nil {
		return false, fmt.Sprintf("resolve template %q: %v", templateName, err)
	}

	if opts.CreateEditorMetadata {
		if err := m.writeManifest(tmpl, containerName, projectDir, opts); err != nil {
			return false, fmt.Sprintf("write editor metadata: %v", err)
		}
	}

	if !opts.StartContainer {
		return true, fmt.Sprintf("dev environment %q prepared from template %q", containerName, templateName)
	}

	if opts.PullImage {
		if err := m.client.PullImage(tmpl.Image, engine.PullOptions{}); err != nil {
			return false, fmt.Sprintf("pull image %q: %v", tmpl.Image, err)
		}
	}

	env := make(map[string]string, len(tmpl.Environment)+len(opts.Environment))
	for k, v := range tmpl.Environment {
		env[k] = v
	}
	for k, v := range opts.Environment {
		env[k] = v
	}

	var volumes []engine.VolumeMount
	for _, v := range tmpl.Volumes {
		hostPath := coredevenv.ExpandWorkspaceToken(v.HostPath, projectDir)
		if err := os.MkdirAll(hostPath, 0755); err != nil {
			return false, fmt.Sprintf("create host directory %q: %v", hostPath, err)
		}
		volumes = append(volumes, engine.VolumeMount{Source: hostPath, Target: v.ContainerPath, ReadOnly: v.ReadOnly})
	}

	var ports []engine.PortBinding
	for _, p := range tmpl.Ports {
		ports = append(ports, engine.PortBinding{ContainerPort: p.ContainerPort, HostPort: p.HostPort, Protocol: p.Protocol})
	}

	spec := engine.ContainerSpec{
		Name: containerName, Image: tmpl.Image, Command: tmpl.Command, Entrypoint: tmpl.Entrypoint,
		Env: env, Volumes: volumes, Ports: ports, WorkingDir: tmpl.WorkingDir,
		RestartPolicy: tmpl.RestartPolicy, Resources: tmpl.Resources,
		Labels: map[string]string{engine.LabelService: containerName},
	}

	id, err := m.client.CreateContainer(spec)
	if err != nil {
		return false, fmt.Sprintf("create container: %v", err)
	}
	if err := m.client.StartContainer(id); err != nil {
		return false, fmt.Sprintf("start container %s: %v", id, err)
	}

	return true, fmt.Sprintf("dev environment %q started as %s", containerName, id)
}

func (m *Manager) writeManifest(tmpl domain.DevEnvironmentTemplate, containerName, projectDir string, opts CreateOptions) error {
	manifest := coredevenv.BuildManifest(coredevenv.BuildManifestParams{
		Template: tmpl, ContainerName: containerName, ProjectDir: projectDir,
		RemoteUser: opts.RemoteUser, ExtraEnv: opts.Environment,
	})

	dir := filepath.Join(projectDir, ".devcontainer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "devcontainer.json"), data, 0644)
}

// Update applies patch over the stored template named name, by loading,
// merging non-zero patch fields, and saving.
func (m *Manager) Update(name string, patch domain.DevEnvironmentTemplate) (domain.DevEnvironmentTemplate, error) {
	existing, err := m.store.GetDevEnvironmentTemplate(name)
	if err != nil {
		return domain.DevEnvironmentTemplate{}, err
	}
	merged := mergeDevEnvironmentTemplate(existing, patch)
	if err := m.store.SaveDevEnvironmentTemplate(merged); err != nil {
		return domain.DevEnvironmentTemplate{}, err
	}
	return merged, nil
}

func mergeDevEnvironmentTemplate(base, patch domain.DevEnvironmentTemplate) domain.DevEnvironmentTemplate {
	out := base
	if patch.EnvType != "" {
		out.EnvType = patch.EnvType
	}
	if patch.Image != "" {
		out.Image = patch.Image
	}
	if patch.Description != "" {
		out.Description = patch.Description
	}
	if patch.Command != nil {
		out.Command = patch.Command
	}
	if patch.Entrypoint != nil {
		out.Entrypoint = patch.Entrypoint
	}
	if patch.WorkingDir != "" {
		out.WorkingDir = patch.WorkingDir
	}
	if patch.Ports != nil {
		out.Ports = patch.Ports
	}
	if patch.Volumes != nil {
		out.Volumes = patch.Volumes
	}
	if len(patch.Environment) > 0 {
		if out.Environment == nil {
			out.Environment = make(map[string]string, len(patch.Environment))
		}
		for k, v := range patch.Environment {
			out.Environment[k] = v
		}
	}
	if patch.Resources.CPULimit != 0 || patch.Resources.MemoryLimit != 0 {
		out.Resources = patch.Resources
	}
	if patch.RestartPolicy != "" {
		out.RestartPolicy = patch.RestartPolicy
	}
	if patch.VSCodeExtensions != nil {
		out.VSCodeExtensions = patch.VSCodeExtensions
	}
	if len(patch.DevContainerFeatures) > 0 {
		if out.DevContainerFeatures == nil {
			out.DevContainerFeatures = make(map[string]string, len(patch.DevContainerFeatures))
		}
		for k, v := range patch.DevContainerFeatures {
			out.DevContainerFeatures[k] = v
		}
	}
	return out
}

// Delete removes a user-defined template. Built-ins cannot be deleted.
func (m *Manager) Delete(name string) error {
	return m.store.DeleteDevEnvironmentTemplate(name)
}

// List returns every stored dev-environment template.
func (m *Manager) List() ([]domain.DevEnvironmentTemplate, error) {
	return m.store.ListDevEnvironmentTemplates()
}

// Get loads a single dev-environment template by name.
func (m *Manager) Get(name string) (domain.DevEnvironmentTemplate, error) {
	return m.store.GetDevEnvironmentTemplate(name)
}

// Export writes the named template as YAML to path on the local filesystem.
func (m *Manager) Export(name, path string) error {
	tmpl, err := m.store.GetDevEnvironmentTemplate(name)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Import reads a YAML-encoded DevEnvironmentTemplate from path and saves it.
func (m *Manager) Import(path string) (domain.DevEnvironmentTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DevEnvironmentTemplate{}, err
	}
	var tmpl domain.DevEnvironmentTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return domain.DevEnvironmentTemplate{}, err
	}
	if tmpl.Name == "" {
		return domain.DevEnvironmentTemplate{}, errors.New("imported template has no name")
	}
	if err := m.store.SaveDevEnvironmentTemplate(tmpl); err != nil {
		return domain.DevEnvironmentTemplate{}, err
	}
	return tmpl, nil
}
