// Package devenv contains the pure editor-metadata shaping logic behind
// the Dev-Environment Manager (C6): turning a DevEnvironmentTemplate plus
// a project directory into the devcontainer.json-shaped manifest spec.md
// §6 defines. No I/O.
package devenv

import (
	"strings"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// WorkspaceToken is the literal placeholder recognized in volume host
// paths and expanded against the caller-supplied project directory.
const WorkspaceToken = "${workspaceFolder}"

// EditorWorkspaceToken is the token the generated manifest uses for the
// editor's own workspace-folder substitution (spec.md §4.6: "translating
// the literal token ${workspaceFolder} to the editor's workspace-folder
// token").
const EditorWorkspaceToken = "${containerWorkspaceFolder}"

// Mount is one entry in the manifest's `mounts` array.
type Mount struct {
	Source string
	Target string
	Type   string // "bind" or "volume"
}

// PortAttributes describes one forwarded port's label, mirrored in the
// manifest's portsAttributes map.
type PortAttributes struct {
	Label string `json:"label,omitempty"`
}

// Manifest is the `.devcontainer/devcontainer.json`-shaped document
// spec.md §6 defines. Fields not recognized there are never populated.
type Manifest struct {
	Name              string                    `json:"name"`
	Image             string                    `json:"image"`
	WorkspaceFolder   string                    `json:"workspaceFolder"`
	WorkspaceMount    string                    `json:"workspaceMount"`
	RemoteUser        string                    `json:"remoteUser,omitempty"`
	OverrideCommand   *bool                     `json:"overrideCommand,omitempty"`
	Command           []string                  `json:"command,omitempty"`
	RemoteEnv         map[string]string         `json:"remoteEnv,omitempty"`
	ForwardPorts      []int                     `json:"forwardPorts,omitempty"`
	PortsAttributes   map[string]PortAttributes `json:"portsAttributes,omitempty"`
	Mounts            []string                  `json:"mounts,omitempty"`
	Extensions        []string                  `json:"extensions,omitempty"`
	Features          map[string]string         `json:"features,omitempty"`
	RunArgs           []string                  `json:"runArgs,omitempty"`
}

// BuildManifestParams carries every input BuildManifest needs.
type BuildManifestParams struct {
	Template        domain.DevEnvironmentTemplate
	ContainerName   string
	ProjectDir      string
	RemoteUser      string
	ExtraEnv        map[string]string // option wins over template env
}

// BuildManifest shapes a DevEnvironmentTemplate into the manifest
// structure, expanding ${workspaceFolder} in volume host paths against
// ProjectDir and translating it to the editor's own token in the
// manifest's mounts.
func BuildManifest(p BuildManifestParams) Manifest {
	env := make(map[string]string, len(p.Template.Environment)+len(p.ExtraEnv))
	for k, v := range p.Template.Environment {
		env[k] = v
	}
	for k, v := range p.ExtraEnv {
		env[k] = v
	}

	workspaceFolder := p.Template.WorkingDir
	if workspaceFolder == "" {
		workspaceFolder = EditorWorkspaceToken
	}

	m := Manifest{
		Name:            p.ContainerName,
		Image:           p.Template.Image,
		WorkspaceFolder: workspaceFolder,
		WorkspaceMount:  mountString(ExpandWorkspaceToken(p.ProjectDir, p.ProjectDir), EditorWorkspaceToken, "bind"),
		RemoteUser:      p.RemoteUser,
		Command:         p.Template.Command,
		RemoteEnv:       env,
		Extensions:      append([]string{}, p.Template.VSCodeExtensions...),
	}

	for _, port := range p.Template.Ports {
		m.ForwardPorts = append(m.ForwardPorts, port.ContainerPort)
	}

	for _, vol := range p.Template.Volumes {
		host := ExpandWorkspaceToken(vol.HostPath, p.ProjectDir)
		target := ExpandWorkspaceToken(vol.ContainerPath, EditorWorkspaceToken)
		m.Mounts = append(m.Mounts, mountString(host, target, "bind"))
	}

	if len(p.Template.DevContainerFeatures) > 0 {
		m.Features = make(map[string]string, len(p.Template.DevContainerFeatures))
		for k, v := range p.Template.DevContainerFeatures {
			m.Features[k] = v
		}
	}

	return m
}

// ExpandWorkspaceToken replaces every occurrence of WorkspaceToken in
// path with replacement.
func ExpandWorkspaceToken(path, replacement string) string {
	return strings.ReplaceAll(path, WorkspaceToken, replacement)
}

func mountString(source, target, mountType string) string {
	return "source=" + source + ",target=" + target + ",type=" + mountType
}
