package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// DockerClient implements Client using the Docker SDK.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient creates a new Docker client. If host is empty, it uses
// the default Docker host from the environment, falling back to Docker
// Desktop's socket on macOS when the default ping fails.
func NewDockerClient(host string) (*DockerClient, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewEngineError("NewDockerClient", "", "", "failed to create client", ErrConnectionFailed)
	}

	ctx := context.Background()
	if _, pingErr := cli.Ping(ctx); pingErr != nil {
		homeDir, _ := os.UserHomeDir()
		desktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"
		cli2, err2 := client.NewClientWithOpts(client.WithHost(desktopSocket), client.WithAPIVersionNegotiation())
		if err2 == nil {
			if _, pingErr2 := cli2.Ping(ctx); pingErr2 == nil {
				cli.Close()
				return &DockerClient{cli: cli2}, nil
			}
			cli2.Close()
		}
	}

	return &DockerClient{cli: cli}, nil
}

func (d *DockerClient) Ping() error {
	_, err := d.cli.Ping(context.Background())
	if err != nil {
		return NewEngineError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Container Operations
// =============================================================================

func (d *DockerClient) CreateContainer(spec ContainerSpec) (string, error) {
	ctx := context.Background()

	config := &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Command,
		Entrypoint: spec.Entrypoint,
		WorkingDir: spec.WorkingDir,
		User:       spec.User,
		Labels:     spec.Labels,
	}

	for k, v := range spec.Env {
		config.Env = append(config.Env, fmt.Sprintf("%s=%s", k, v))
	}

	hostConfig := &container.HostConfig{}

	if len(spec.Ports) > 0 {
		portBindings := nat.PortMap{}
		exposedPorts := nat.PortSet{}
		for _, p := range spec.Ports {
			proto := p.Protocol
			if proto == "" {
				proto = "tcp"
			}
			containerPort := nat.Port(fmt.Sprintf("%d/%s", p.ContainerPort, proto))
			exposedPorts[containerPort] = struct{}{}

			hostPort := ""
			if p.HostPort != 0 {
				hostPort = fmt.Sprintf("%d", p.HostPort)
			}
			portBindings[containerPort] = []nat.PortBinding{{HostIP: p.HostIP, HostPort: hostPort}}
		}
		config.ExposedPorts = exposedPorts
		hostConfig.PortBindings = portBindings
	}

	for _, v := range spec.Volumes {
		mountType := mount.TypeVolume
		if strings.HasPrefix(v.Source, "/") {
			mountType = mount.TypeBind
		}
		hostConfig.Mounts = append(hostConfig.Mounts, mount.Mount{
			Type: mountType, Source: v.Source, Target: v.Target, ReadOnly: v.ReadOnly,
		})
	}

	if spec.Resources.CPULimit > 0 {
		hostConfig.NanoCPUs = int64(spec.Resources.CPULimit * 1e9)
	}
	if spec.Resources.MemoryLimit > 0 {
		hostConfig.Memory = spec.Resources.MemoryLimit
	}

	if spec.RestartPolicy.Name != "" {
		hostConfig.RestartPolicy = container.RestartPolicy{
			Name:              container.RestartPolicyMode(spec.RestartPolicy.Name),
			MaximumRetryCount: spec.RestartPolicy.MaximumRetryCount,
		}
	}

	if spec.HealthCheck != nil {
		config.Healthcheck = &container.HealthConfig{
			Test:        spec.HealthCheck.Test,
			Interval:    spec.HealthCheck.Interval,
			Timeout:     spec.HealthCheck.Timeout,
			Retries:     spec.HealthCheck.Retries,
			StartPeriod: spec.HealthCheck.StartPeriod,
		}
	}

	var networkConfig *network.NetworkingConfig
	if len(spec.Networks) > 0 {
		networkConfig = &network.NetworkingConfig{EndpointsConfig: map[string]*network.EndpointSettings{}}
		for _, n := range spec.Networks {
			settings := &network.EndpointSettings{}
			if aliases, ok := spec.NetworkAliases[n]; ok {
				settings.Aliases = aliases
			}
			networkConfig.EndpointsConfig[n] = settings
		}
	}

	resp, err := d.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		if strings.Contains(err.Error(), "Conflict") {
			return "", NewEngineError("CreateContainer", "container", spec.Name, "container already exists", ErrContainerAlreadyExists)
		}
		if strings.Contains(err.Error(), "port is already allocated") {
			return "", NewEngineError("CreateContainer", "container", spec.Name, err.Error(), ErrPortAlreadyAllocated)
		}
		return "", NewEngineError("CreateContainer", "container", spec.Name, err.Error(), err)
	}

	return resp.ID, nil
}

func (d *DockerClient) StartContainer(containerID string) error {
	err := d.cli.ContainerStart(context.Background(), containerID, container.StartOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewEngineError("StartContainer", "container", containerID, "container not found", ErrContainerNotFound)
		}
		if strings.Contains(err.Error(), "is already running") {
			return NewEngineError("StartContainer", "container", containerID, "container is already running", ErrContainerAlreadyRunning)
		}
		return NewEngineError("StartContainer", "container", containerID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) StopContainer(containerID string, timeout *time.Duration) error {
	stopOptions := container.StopOptions{}
	if timeout != nil {
		seconds := int(timeout.Seconds())
		stopOptions.Timeout = &seconds
	}

	err := d.cli.ContainerStop(context.Background(), containerID, stopOptions)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewEngineError("StopContainer", "container", containerID, "container not found", ErrContainerNotFound)
		}
		if strings.Contains(err.Error(), "is not running") {
			return NewEngineError("StopContainer", "container", containerID, "container is not running", ErrContainerNotRunning)
		}
		return NewEngineError("StopContainer", "container", containerID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) RemoveContainer(containerID string, opts RemoveOptions) error {
	removeOpts := container.RemoveOptions{Force: opts.Force, RemoveVolumes: opts.RemoveVolumes}
	err := d.cli.ContainerRemove(context.Background(), containerID, removeOpts)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewEngineError("RemoveContainer", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return NewEngineError("RemoveContainer", "container", containerID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) InspectContainer(containerID string) (*ContainerInfo, error) {
	ctx := context.Background()
	resp, err := d.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, NewEngineError("InspectContainer", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return nil, NewEngineError("InspectContainer", "container", containerID, err.Error(), err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, resp.Created)

	var startedAt, finishedAt *time.Time
	if resp.State.StartedAt != "" && resp.State.StartedAt != "0001-01-01T00:00:00Z" {
		t, _ := time.Parse(time.RFC3339Nano, resp.State.StartedAt)
		startedAt = &t
	}
	if resp.State.FinishedAt != "" && resp.State.FinishedAt != "0001-01-01T00:00:00Z" {
		t, _ := time.Parse(time.RFC3339Nano, resp.State.FinishedAt)
		finishedAt = &t
	}

	var ports []PortBinding
	for containerPort, bindings := range resp.NetworkSettings.Ports {
		port, proto := nat.Port(containerPort).Port(), nat.Port(containerPort).Proto()
		for _, binding := range bindings {
			var hostPort int
			if binding.HostPort != "" {
				fmt.Sscanf(binding.HostPort, "%d", &hostPort)
			}
			var containerPortInt int
			fmt.Sscanf(port, "%d", &containerPortInt)
			ports = append(ports, PortBinding{
				ContainerPort: containerPortInt, HostPort: hostPort, Protocol: proto, HostIP: binding.HostIP,
			})
		}
	}

	health := ""
	if resp.State.Health != nil {
		health = resp.State.Health.Status
	}

	return &ContainerInfo{
		ID:         resp.ID,
		Name:       strings.TrimPrefix(resp.Name, "/"),
		Image:      resp.Config.Image,
		Status:     ContainerStatus(resp.State.Status),
		State:      resp.State.Status,
		Health:     health,
		CreatedAt:  createdAt,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Ports:      ports,
		Labels:     resp.Config.Labels,
		ExitCode:   resp.State.ExitCode,
	}, nil
}

func (d *DockerClient) ListContainers(opts ListOptions) ([]ContainerInfo, error) {
	ctx := context.Background()
	listOpts := container.ListOptions{All: opts.All}

	if len(opts.Filters) > 0 {
		f := filters.NewArgs()
		for k, v := range opts.Filters {
			f.Add(k, v)
		}
		listOpts.Filters = f
	}

	containers, err := d.cli.ContainerList(ctx, listOpts)
	if err != nil {
		return nil, NewEngineError("ListContainers", "container", "", err.Error(), err)
	}

	var result []ContainerInfo
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		var ports []PortBinding
		for _, p := range c.Ports {
			ports = append(ports, PortBinding{
				ContainerPort: int(p.PrivatePort), HostPort: int(p.PublicPort), Protocol: p.Type, HostIP: p.IP,
			})
		}

		result = append(result, ContainerInfo{
			ID: c.ID, Name: name, Image: c.Image, Status: ContainerStatus(c.State), State: c.State,
			CreatedAt: time.Unix(c.Created, 0), Ports: ports, Labels: c.Labels,
		})
	}

	return result, nil
}

func (d *DockerClient) ContainerLogs(containerID string, opts LogOptions) (io.ReadCloser, error) {
	ctx := context.Background()
	logOpts := container.LogsOptions{
		ShowStdout: true, ShowStderr: true, Follow: opts.Follow, Tail: opts.Tail, Timestamps: opts.Timestamps,
	}
	if !opts.Since.IsZero() {
		logOpts.Since = opts.Since.Format(time.RFC3339)
	}
	if !opts.Until.IsZero() {
		logOpts.Until = opts.Until.Format(time.RFC3339)
	}

	reader, err := d.cli.ContainerLogs(ctx, containerID, logOpts)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, NewEngineError("ContainerLogs", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return nil, NewEngineError("ContainerLogs", "container", containerID, err.Error(), err)
	}
	return reader, nil
}

// Exec runs argv inside a running container via a one-shot create/start/
// inspect/wait exec session, draining combined stdout/stderr. Used by
// the network manager's reachability probe and the runtime-network and
// shared-volume fabric transports.
func (d *DockerClient) Exec(ctx context.Context, containerID string, argv []string) (ExecResult, error) {
	execCfg := container.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	}

	created, err := d.cli.ContainerExecCreate(ctx, containerID, execCfg)
	if err != nil {
		if client.IsErrNotFound(err) {
			return ExecResult{}, NewEngineError("Exec", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return ExecResult{}, NewEngineError("Exec", "container", containerID, err.Error(), err)
	}

	attach, err := d.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return ExecResult{}, NewEngineError("Exec", "container", containerID, err.Error(), err)
	}
	defer attach.Close()

	var out bytes.Buffer
	_, _ = io.Copy(&out, attach.Reader)

	inspect, err := d.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return ExecResult{}, NewEngineError("Exec", "container", containerID, err.Error(), err)
	}

	return ExecResult{ExitCode: inspect.ExitCode, Stdout: out.String()}, nil
}

// =============================================================================
// Network Operations
// =============================================================================

func (d *DockerClient) CreateNetwork(spec NetworkSpec) (string, error) {
	ctx := context.Background()
	driver := spec.Driver
	if driver == "" {
		driver = "bridge"
	}

	opts := network.CreateOptions{
		Driver:     driver,
		Labels:     spec.Labels,
		Internal:   spec.Internal,
		EnableIPv6: &spec.EnableIPv6,
		Options:    spec.Options,
	}
	if spec.Subnet != "" {
		cfg := network.IPAMConfig{Subnet: spec.Subnet}
		if spec.Gateway != "" {
			cfg.Gateway = spec.Gateway
		}
		opts.IPAM = &network.IPAM{Config: []network.IPAMConfig{cfg}}
	}

	resp, err := d.cli.NetworkCreate(ctx, spec.Name, opts)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return "", NewEngineError("CreateNetwork", "network", spec.Name, "network already exists", ErrNetworkAlreadyExists)
		}
		return "", NewEngineError("CreateNetwork", "network", spec.Name, err.Error(), err)
	}

	return resp.ID, nil
}

func (d *DockerClient) RemoveNetwork(networkID string) error {
	err := d.cli.NetworkRemove(context.Background(), networkID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewEngineError("RemoveNetwork", "network", networkID, "network not found", ErrNetworkNotFound)
		}
		if strings.Contains(err.Error(), "has active endpoints") {
			return NewEngineError("RemoveNetwork", "network", networkID, "network has active endpoints", ErrNetworkInUse)
		}
		return NewEngineError("RemoveNetwork", "network", networkID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) ConnectNetwork(networkID, containerID string, aliases []string) error {
	var settings *network.EndpointSettings
	if len(aliases) > 0 {
		settings = &network.EndpointSettings{Aliases: aliases}
	}

	err := d.cli.NetworkConnect(context.Background(), networkID, containerID, settings)
	if err != nil {
		if client.IsErrNotFound(err) {
			if strings.Contains(err.Error(), "network") {
				return NewEngineError("ConnectNetwork", "network", networkID, "network not found", ErrNetworkNotFound)
			}
			return NewEngineError("ConnectNetwork", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return NewEngineError("ConnectNetwork", "network", networkID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) DisconnectNetwork(networkID, containerID string, force bool) error {
	err := d.cli.NetworkDisconnect(context.Background(), networkID, containerID, force)
	if err != nil {
		if client.IsErrNotFound(err) {
			if strings.Contains(err.Error(), "network") {
				return NewEngineError("DisconnectNetwork", "network", networkID, "network not found", ErrNetworkNotFound)
			}
			return NewEngineError("DisconnectNetwork", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return NewEngineError("DisconnectNetwork", "network", networkID, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) NetworkInspect(name string) (NetworkDetail, error) {
	ctx := context.Background()
	resp, err := d.cli.NetworkInspect(ctx, name, network.InspectOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return NetworkDetail{}, NewEngineError("NetworkInspect", "network", name, "network not found", ErrNetworkNotFound)
		}
		return NetworkDetail{}, NewEngineError("NetworkInspect", "network", name, err.Error(), err)
	}

	detail := NetworkDetail{
		ID:         resp.ID,
		Name:       resp.Name,
		Driver:     resp.Driver,
		Internal:   resp.Internal,
		Containers: make(map[string]NetworkEndpoint, len(resp.Containers)),
	}
	if len(resp.IPAM.Config) > 0 {
		detail.Subnet = resp.IPAM.Config[0].Subnet
		detail.Gateway = resp.IPAM.Config[0].Gateway
	}
	for _, ep := range resp.Containers {
		detail.Containers[ep.Name] = NetworkEndpoint{
			ContainerName: ep.Name,
			MACAddress:    ep.MacAddress,
			IPv4Address:   ep.IPv4Address,
			IPv6Address:   ep.IPv6Address,
		}
	}
	return detail, nil
}

func (d *DockerClient) ListNetworks() ([]NetworkDetail, error) {
	ctx := context.Background()
	summaries, err := d.cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, NewEngineError("ListNetworks", "network", "", err.Error(), err)
	}

	details := make([]NetworkDetail, 0, len(summaries))
	for _, n := range summaries {
		detail := NetworkDetail{
			ID:         n.ID,
			Name:       n.Name,
			Driver:     n.Driver,
			Internal:   n.Internal,
			Containers: make(map[string]NetworkEndpoint, len(n.Containers)),
		}
		if len(n.IPAM.Config) > 0 {
			detail.Subnet = n.IPAM.Config[0].Subnet
			detail.Gateway = n.IPAM.Config[0].Gateway
		}
		for _, ep := range n.Containers {
			detail.Containers[ep.Name] = NetworkEndpoint{
				ContainerName: ep.Name,
				MACAddress:    ep.MacAddress,
				IPv4Address:   ep.IPv4Address,
				IPv6Address:   ep.IPv6Address,
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// =============================================================================
// Volume Operations
// =============================================================================

func (d *DockerClient) CreateVolume(spec VolumeSpec) (string, error) {
	ctx := context.Background()
	driver := spec.Driver
	if driver == "" {
		driver = "local"
	}

	resp, err := d.cli.VolumeCreate(ctx, volume.CreateOptions{Name: spec.Name, Driver: driver, Labels: spec.Labels})
	if err != nil {
		return "", NewEngineError("CreateVolume", "volume", spec.Name, err.Error(), err)
	}
	return resp.Name, nil
}

func (d *DockerClient) RemoveVolume(volumeName string, force bool) error {
	err := d.cli.VolumeRemove(context.Background(), volumeName, force)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewEngineError("RemoveVolume", "volume", volumeName, "volume not found", ErrVolumeNotFound)
		}
		if strings.Contains(err.Error(), "in use") {
			return NewEngineError("RemoveVolume", "volume", volumeName, "volume is in use", ErrVolumeInUse)
		}
		return NewEngineError("RemoveVolume", "volume", volumeName, err.Error(), err)
	}
	return nil
}

func (d *DockerClient) VolumeGet(name string) (VolumeDetail, bool, error) {
	ctx := context.Background()
	resp, err := d.cli.VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return VolumeDetail{}, false, nil
		}
		return VolumeDetail{}, false, NewEngineError("VolumeGet", "volume", name, err.Error(), err)
	}
	return VolumeDetail{
		Name: resp.Name, Driver: resp.Driver, Mountpoint: resp.Mountpoint, Labels: resp.Labels,
	}, true, nil
}

// =============================================================================
// Image Operations
// =============================================================================

func (d *DockerClient) PullImage(imageName string, opts PullOptions) error {
	ctx := context.Background()
	pullOpts := image.PullOptions{}
	if opts.Platform != "" {
		pullOpts.Platform = opts.Platform
	}

	reader, err := d.cli.ImagePull(ctx, imageName, pullOpts)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not found") ||
			strings.Contains(errStr, "manifest unknown") ||
			strings.Contains(errStr, "repository does not exist") ||
			strings.Contains(errStr, "pull access denied") {
			return NewEngineError("PullImage", "image", imageName, "image not found", ErrImageNotFound)
		}
		return NewEngineError("PullImage", "image", imageName, err.Error(), ErrImagePullFailed)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return NewEngineError("PullImage", "image", imageName, err.Error(), ErrImagePullFailed)
	}
	return nil
}

func (d *DockerClient) ImageExists(imageName string) (bool, error) {
	ctx := context.Background()
	_, _, err := d.cli.ImageInspectWithRaw(ctx, imageName)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, NewEngineError("ImageExists", "image", imageName, err.Error(), err)
	}
	return true, nil
}

// ContainerStats returns resource statistics for a running container,
// snapshotting a single non-streaming stats sample.
func (d *DockerClient) ContainerStats(containerID string) (*ContainerResourceStats, error) {
	ctx := context.Background()
	resp, err := d.cli.ContainerStatsOneShot(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, NewEngineError("ContainerStats", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return nil, NewEngineError("ContainerStats", "container", containerID, err.Error(), err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, NewEngineError("ContainerStats", "container", containerID, err.Error(), err)
	}

	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) - float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(stats.CPUStats.SystemUsage) - float64(stats.PreCPUStats.SystemUsage)
	cpuPercent := 0.0
	if systemDelta > 0 && cpuDelta > 0 {
		cpuPercent = (cpuDelta / systemDelta) * float64(len(stats.CPUStats.CPUUsage.PercpuUsage)) * 100.0
	}

	memPercent := 0.0
	if stats.MemoryStats.Limit > 0 {
		memPercent = (float64(stats.MemoryStats.Usage) / float64(stats.MemoryStats.Limit)) * 100.0
	}

	var rx, tx int64
	for _, n := range stats.Networks {
		rx += int64(n.RxBytes)
		tx += int64(n.TxBytes)
	}

	var blkRead, blkWrite int64
	for _, e := range stats.BlkioStats.IoServiceBytesRecursive {
		switch strings.ToLower(e.Op) {
		case "read":
			blkRead += int64(e.Value)
		case "write":
			blkWrite += int64(e.Value)
		}
	}

	return &ContainerResourceStats{
		CPUPercent:       cpuPercent,
		MemoryUsageBytes: int64(stats.MemoryStats.Usage),
		MemoryLimitBytes: int64(stats.MemoryStats.Limit),
		MemoryPercent:    memPercent,
		NetworkRxBytes:   rx,
		NetworkTxBytes:   tx,
		BlockReadBytes:   blkRead,
		BlockWriteBytes:  blkWrite,
		PIDs:             int(stats.PidsStats.Current),
	}, nil
}
