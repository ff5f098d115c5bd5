package domain

// =============================================================================
// Network Template
// =============================================================================

// NetworkTemplate is a named network blueprint stored in the template store.
type NetworkTemplate struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Driver      string            `yaml:"driver" json:"driver"`
	Subnet      string            `yaml:"subnet,omitempty" json:"subnet,omitempty"`
	Gateway     string            `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	Internal    bool              `yaml:"internal,omitempty" json:"internal,omitempty"`
	EnableIPv6  bool              `yaml:"enable_ipv6,omitempty" json:"enable_ipv6,omitempty"`
	Options     map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// =============================================================================
// Dev-Environment Template
// =============================================================================

// EnvironmentType tags the kind of development environment a template
// provisions.
type EnvironmentType string

const (
	EnvTypePython     EnvironmentType = "python"
	EnvTypeNodeJS     EnvironmentType = "nodejs"
	EnvTypeFullstack  EnvironmentType = "fullstack"
	EnvTypeDatabase   EnvironmentType = "database"
	EnvTypeCustom     EnvironmentType = "custom"
)

// DevVolumeMount is one host<->container mount for a dev-environment template.
type DevVolumeMount struct {
	HostPath      string `yaml:"host_path" json:"host_path"`
	ContainerPath string `yaml:"container_path" json:"container_path"`
	ReadOnly      bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
}

// DevEnvironmentTemplate is a named long-lived-container blueprint.
type DevEnvironmentTemplate struct {
	Name               string            `yaml:"name" json:"name"`
	EnvType            EnvironmentType   `yaml:"env_type" json:"env_type"`
	Image              string            `yaml:"image" json:"image"`
	Description        string            `yaml:"description,omitempty" json:"description,omitempty"`
	Command            []string          `yaml:"command,omitempty" json:"command,omitempty"`
	Entrypoint         []string          `yaml:"entrypoint,omitempty" json:"entrypoint,omitempty"`
	WorkingDir         string            `yaml:"working_dir,omitempty" json:"working_dir,omitempty"`
	Ports              []PortMapping     `yaml:"ports,omitempty" json:"ports,omitempty"`
	Volumes            []DevVolumeMount  `yaml:"volumes,omitempty" json:"volumes,omitempty"`
	Environment        map[string]string `yaml:"environment,omitempty" json:"environment,omitempty"`
	Resources          ResourceLimits    `yaml:"resources,omitempty" json:"resources,omitempty"`
	RestartPolicy      RestartPolicy     `yaml:"restart_policy,omitempty" json:"restart_policy,omitempty"`
	VSCodeExtensions   []string          `yaml:"vscode_extensions,omitempty" json:"vscode_extensions,omitempty"`
	DevContainerFeatures map[string]string `yaml:"devcontainer_features,omitempty" json:"devcontainer_features,omitempty"`
}
