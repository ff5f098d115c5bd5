// Package engine provides a container-engine adapter for lifecycle
// management of the containers, networks, and volumes a service group
// needs (C1).
package engine

import (
	"context"
	"io"
	"time"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating a container.
type ContainerSpec struct {
	Name           string
	Image          string
	Command        []string
	Entrypoint     []string
	Env            map[string]string
	Labels         map[string]string
	Ports          []PortBinding
	Volumes        []VolumeMount
	Networks       []string
	NetworkAliases map[string][]string // network name -> aliases (service name for DNS)
	WorkingDir     string
	User           string
	RestartPolicy  domain.RestartPolicy
	Resources      domain.ResourceLimits
	HealthCheck    *domain.HealthCheck
}

// PortBinding defines a port mapping.
type PortBinding struct {
	ContainerPort int
	HostPort      int // 0 for auto-assign
	Protocol      string
	HostIP        string
}

// VolumeMount defines a volume mount.
type VolumeMount struct {
	Source   string // volume name or host path
	Target   string
	ReadOnly bool
}

// ContainerStatus represents the container status.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerInfo contains information about a container.
type ContainerInfo struct {
	ID         string
	Name       string
	Image      string
	Status     ContainerStatus
	State      string
	Health     string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Ports      []PortBinding
	Labels     map[string]string
	ExitCode   int
}

// =============================================================================
// Network Types
// =============================================================================

// NetworkSpec defines the specification for creating a network.
type NetworkSpec struct {
	Name       string
	Driver     string
	Subnet     string
	Gateway    string
	Internal   bool
	EnableIPv6 bool
	Options    map[string]string
	Labels     map[string]string
}

// NetworkEndpoint describes one container attached to a network.
type NetworkEndpoint struct {
	ContainerID   string
	ContainerName string
	MACAddress    string
	IPv4Address   string
	IPv6Address   string
}

// NetworkDetail is the result of inspecting a network, satisfying C3's
// Inspect contract.
type NetworkDetail struct {
	ID         string
	Name       string
	Driver     string
	Subnet     string
	Gateway    string
	Internal   bool
	Containers map[string]NetworkEndpoint // keyed by container name
}

// =============================================================================
// Volume Types
// =============================================================================

// VolumeSpec defines the specification for creating a volume.
type VolumeSpec struct {
	Name   string
	Driver string
	Labels map[string]string
}

// VolumeDetail is the result of inspecting a volume.
type VolumeDetail struct {
	Name       string
	Driver     string
	Mountpoint string
	Labels     map[string]string
}

// =============================================================================
// Options
// =============================================================================

// RemoveOptions defines options for removing containers.
type RemoveOptions struct {
	Force         bool
	RemoveVolumes bool
}

// ListOptions defines options for listing containers.
type ListOptions struct {
	All     bool
	Filters map[string]string
}

// LogOptions defines options for container logs.
type LogOptions struct {
	Follow     bool
	Tail       string
	Since      time.Time
	Until      time.Time
	Timestamps bool
}

// PullOptions defines options for pulling images.
type PullOptions struct {
	Platform string
}

// ExecResult is the outcome of a one-shot exec inside a running container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// =============================================================================
// Client Interface
// =============================================================================

// Client defines the container-engine interface that every orchestration,
// network, and fabric component in this module depends on instead of the
// Docker SDK directly.
type Client interface {
	// Container operations
	CreateContainer(spec ContainerSpec) (containerID string, err error)
	StartContainer(containerID string) error
	StopContainer(containerID string, timeout *time.Duration) error
	RemoveContainer(containerID string, opts RemoveOptions) error
	InspectContainer(containerID string) (*ContainerInfo, error)
	ListContainers(opts ListOptions) ([]ContainerInfo, error)
	ContainerLogs(containerID string, opts LogOptions) (io.ReadCloser, error)
	ContainerStats(containerID string) (*ContainerResourceStats, error)

	// Exec runs argv inside a running container and waits for it to
	// finish, returning its exit code and captured output. DockerClient
	// puts stdout and stderr together in Stdout and leaves Stderr empty.
	Exec(ctx context.Context, containerID string, argv []string) (ExecResult, error)

	// Network operations
	CreateNetwork(spec NetworkSpec) (networkID string, err error)
	RemoveNetwork(networkID string) error
	ConnectNetwork(networkID, containerID string, aliases []string) error
	DisconnectNetwork(networkID, containerID string, force bool) error
	NetworkInspect(name string) (NetworkDetail, error)
	ListNetworks() ([]NetworkDetail, error)

	// Volume operations
	CreateVolume(spec VolumeSpec) (volumeName string, err error)
	RemoveVolume(volumeName string, force bool) error
	VolumeGet(name string) (VolumeDetail, bool, error)

	// Image operations
	PullImage(image string, opts PullOptions) error
	ImageExists(image string) (bool, error)

	// Health operations
	Ping() error
	Close() error
}

// ContainerResourceStats represents resource statistics for a container.
type ContainerResourceStats struct {
	CPUPercent       float64
	MemoryUsageBytes int64
	MemoryLimitBytes int64
	MemoryPercent    float64
	NetworkRxBytes   int64
	NetworkTxBytes   int64
	BlockReadBytes   int64
	BlockWriteBytes  int64
	PIDs             int
}

// =============================================================================
// Label Constants
// =============================================================================

const (
	LabelManaged = "com.smoothstack.managed"
	LabelGroup   = "com.smoothstack.group"
	LabelService = "com.smoothstack.service"
)
