package domain

import "time"

// =============================================================================
// Restart Policy
// =============================================================================

// RestartPolicy controls how the container engine restarts a stopped container.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// =============================================================================
// Dependency Condition
// =============================================================================

// DependencyCondition is the gate a dependent service waits on before starting.
type DependencyCondition string

const (
	ConditionStarted              DependencyCondition = "started"
	ConditionHealthy               DependencyCondition = "healthy"
	ConditionCompletedSuccessfully DependencyCondition = "completed-successfully"
)

// ServiceDependency is one edge in a service group's dependency graph.
// Immutable once parsed.
type ServiceDependency struct {
	Target    string              `yaml:"target" json:"target"`
	Condition DependencyCondition `yaml:"condition" json:"condition"`
	Required  bool                `yaml:"required" json:"required"`
}

// =============================================================================
// Port & Volume Maps
// =============================================================================

// PortMapping maps a container port+protocol to a host port.
type PortMapping struct {
	ContainerPort int    `yaml:"container_port" json:"container_port"`
	HostPort      int    `yaml:"host_port" json:"host_port"`
	Protocol      string `yaml:"protocol" json:"protocol"` // "tcp" or "udp"
}

// VolumeMapping maps a host path to a container path.
type VolumeMapping struct {
	HostPath      string `yaml:"host_path" json:"host_path"`
	ContainerPath string `yaml:"container_path" json:"container_path"`
	ReadOnly      bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
}

// HealthCheck describes how the container engine probes a service's liveness.
type HealthCheck struct {
	Test        []string      `yaml:"test" json:"test"`
	Interval    time.Duration `yaml:"interval" json:"interval"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Retries     int           `yaml:"retries" json:"retries"`
	StartPeriod time.Duration `yaml:"start_period" json:"start_period"`
}

// DefaultHealthCheckInterval and DefaultHealthCheckTimeout/Retries are the
// fallbacks used when a healthy-dependency wait has no explicit healthcheck
// interval/timeout of its own (spec: interval default 2s, 10 retries x 5s).
const (
	DefaultHealthCheckInterval = 2 * time.Second
	DefaultHealthCheckTimeout  = 5 * time.Second
	DefaultHealthCheckRetries  = 10
)

// ResourceLimits bounds CPU and memory for a single service.
type ResourceLimits struct {
	CPULimit    float64 `yaml:"cpu_limit,omitempty" json:"cpu_limit,omitempty"`
	MemoryLimit int64   `yaml:"memory_limit,omitempty" json:"memory_limit,omitempty"`
}

// =============================================================================
// Service
// =============================================================================

// Service is one container in a service group.
type Service struct {
	Name            string               `yaml:"name" json:"name"`
	Image           string               `yaml:"image" json:"image"`
	ContainerName   string               `yaml:"container_name,omitempty" json:"container_name,omitempty"`
	Command         []string             `yaml:"command,omitempty" json:"command,omitempty"`
	Entrypoint      []string             `yaml:"entrypoint,omitempty" json:"entrypoint,omitempty"`
	WorkingDir      string               `yaml:"working_dir,omitempty" json:"working_dir,omitempty"`
	User            string               `yaml:"user,omitempty" json:"user,omitempty"`
	Restart         RestartPolicy        `yaml:"restart,omitempty" json:"restart,omitempty"`
	Ports           []PortMapping        `yaml:"ports,omitempty" json:"ports,omitempty"`
	Volumes         []VolumeMapping      `yaml:"volumes,omitempty" json:"volumes,omitempty"`
	Environment     map[string]string    `yaml:"environment,omitempty" json:"environment,omitempty"`
	Networks        []string             `yaml:"networks,omitempty" json:"networks,omitempty"`
	Labels          map[string]string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	HealthCheck     *HealthCheck         `yaml:"healthcheck,omitempty" json:"healthcheck,omitempty"`
	Resources       ResourceLimits       `yaml:"resources,omitempty" json:"resources,omitempty"`
	StopGracePeriod time.Duration        `yaml:"stop_grace_period,omitempty" json:"stop_grace_period,omitempty"`
	DependsOn       []ServiceDependency  `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// NewService constructs a Service with the required name and image set and
// every collection field initialized, so callers never have to nil-check
// before appending.
func NewService(name, image string) *Service {
	return &Service{
		Name:        name,
		Image:       image,
		Restart:     RestartNo,
		Environment: make(map[string]string),
		Labels:      make(map[string]string),
	}
}

// DependencyNames returns the target service names this service depends on,
// in declaration order.
func (s *Service) DependencyNames() []string {
	names := make([]string, len(s.DependsOn))
	for i, d := range s.DependsOn {
		names[i] = d.Target
	}
	return names
}
