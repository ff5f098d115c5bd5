// Package orchestrator implements Deploy/Start/Stop/Remove/Status for a
// service group (C5), translating domain.Service into container-engine
// specs and respecting the group's dependency order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/core/orchestration"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

const (
	// LabelGroup tags every container this orchestrator created with the
	// owning service group's name.
	LabelGroup = engine.LabelGroup
	// LabelService tags a container with its service name within the group.
	LabelService = engine.LabelService

	defaultStopGracePeriod = 10 * time.Second
)

// Orchestrator manages the lifecycle of a service group's containers.
type Orchestrator struct {
	client engine.Client
	logger *slog.Logger
}

// New creates an Orchestrator bound to the given container engine client.
func New(client engine.Client, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, logger: logger.With("component", "orchestrator")}
}

// DeployResult carries per-service outcomes for one Deploy call, per
// spec.md §4.5's accumulate-and-continue propagation policy.
type DeployResult struct {
	Success      bool
	Messages     []string
	ContainerIDs map[string]string // service name -> container id
}

// Deploy validates the group, then materializes its networks and
// containers: it creates every network and every container not already
// present, but does not start anything (spec.md §4.5). Calling Deploy
// again on an already-deployed group is a no-op that reuses what it
// finds, satisfying the idempotence law in spec.md §8.
func (o *Orchestrator) Deploy(ctx context.Context, group *domain.ServiceGroup) DeployResult {
	result := DeployResult{Success: true, ContainerIDs: make(map[string]string)}

	if problems := orchestration.Validate(group); len(problems) > 0 {
		result.Success = false
		result.Messages = append(result.Messages, problems...)
		return result
	}

	for name, net := range group.Networks {
		qualified := qualifiedNetworkName(group.Name, name)
		if detail, err := o.client.NetworkInspect(qualified); err == nil {
			result.Messages = append(result.Messages, fmt.Sprintf("network %q already present as %s", name, detail.ID))
			continue
		} else if !errors.Is(err, engine.ErrNetworkNotFound) {
			result.Success = false
			result.Messages = append(result.Messages, fmt.Sprintf("network %q: %v", name, err))
			continue
		}

		id, err := o.client.CreateNetwork(engine.NetworkSpec{
			Name: qualified, Driver: net.Driver, Subnet: net.Subnet,
			Gateway: net.Gateway, Internal: net.Internal, EnableIPv6: net.EnableIPv6, Labels: net.Labels,
		})
		if err != nil {
			result.Success = false
			result.Messages = append(result.Messages, fmt.Sprintf("network %q: %v", name, err))
			continue
		}
		result.Messages = append(result.Messages, fmt.Sprintf("network %q created as %s", name, id))
	}

	ordered, err := orchestration.TopologicalSort(group.Services)
	if err != nil {
		result.Success = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}

	for _, svc := range ordered {
		name := containerName(group.Name, svc)
		if info, err := o.findContainer(name); err == nil {
			result.ContainerIDs[svc.Name] = info.ID
			result.Messages = append(result.Messages, fmt.Sprintf("service %q already present as %s", svc.Name, info.ID))
			continue
		} else if !errors.Is(err, engine.ErrContainerNotFound) {
			result.Success = false
			result.Messages = append(result.Messages, fmt.Sprintf("service %q: %v", svc.Name, err))
			continue
		}

		id, err := o.createService(group.Name, svc)
		if err != nil {
			result.Success = false
			result.Messages = append(result.Messages, fmt.Sprintf("service %q: %v", svc.Name, err))
			continue
		}
		result.ContainerIDs[svc.Name] = id
		result.Messages = append(result.Messages, fmt.Sprintf("service %q created as %s", svc.Name, id))
	}

	return result
}

// Start brings up every already-created container in dependency order,
// waiting on each dependency's condition (started, healthy or
// completed-successfully) before starting its dependents, and recording
// per-service failures without aborting the rest (spec.md §4.5). A
// service whose container is already running is left alone, so starting
// an already-started group is a no-op success (spec.md §8).
func (o *Orchestrator) Start(ctx context.Context, group *domain.ServiceGroup) []string {
	var messages []string
	started := make(map[string]string) // service name -> container id, once confirmed running

	ordered, err := orchestration.TopologicalSort(group.Services)
	if err != nil {
		return []string{err.Error()}
	}

	for _, svc := range ordered {
		name := containerName(group.Name, svc)
		info, err := o.findContainer(name)
		if err != nil {
			messages = append(messages, fmt.Sprintf("service %q: %v", svc.Name, err))
			continue
		}

		if err := o.waitForDependencies(ctx, svc, started); err != nil {
			messages = append(messages, fmt.Sprintf("service %q: %v", svc.Name, err))
			continue
		}

		if info.Status != engine.ContainerStatusRunning {
			if err := o.client.StartContainer(info.ID); err != nil {
				messages = append(messages, fmt.Sprintf("service %q: %v", svc.Name, err))
				continue
			}
		}
		started[svc.Name] = info.ID
	}

	return messages
}

func (o *Orchestrator) waitForDependencies(ctx context.Context, svc domain.Service, started map[string]string) error {
	for _, dep := range svc.DependsOn {
		id, ok := started[dep.Target]
		if !ok {
			if dep.Required {
				return fmt.Errorf("required dependency %q was not started", dep.Target)
			}
			continue
		}

		var waitErr error
		switch dep.Condition {
		case domain.ConditionHealthy:
			waitErr = o.waitHealthy(ctx, id)
		case domain.ConditionCompletedSuccessfully:
			waitErr = o.waitCompleted(ctx, id)
		default: // domain.ConditionStarted: already running is enough
		}
		if waitErr != nil && dep.Required {
			return fmt.Errorf("dependency %q did not satisfy condition %q: %w", dep.Target, dep.Condition, waitErr)
		}
	}
	return nil
}

// waitHealthy polls until the container reports healthy, or is reported
// as having no healthcheck at all, in which case the condition is
// satisfied the moment it is started. It polls every
// domain.DefaultHealthCheckInterval (2s) and times out after
// DefaultHealthCheckRetries × DefaultHealthCheckTimeout (10 × 5s = 50s);
// the dependency's own healthcheck interval, retries and timeout are not
// consulted.
func (o *Orchestrator) waitHealthy(ctx context.Context, containerID string) error {
	deadline := time.Now().Add(time.Duration(domain.DefaultHealthCheckRetries) * domain.DefaultHealthCheckTimeout)
	for {
		info, err := o.client.InspectContainer(containerID)
		if err != nil {
			return err
		}
		if info.Health == "healthy" || info.Health == "" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for healthy status")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(domain.DefaultHealthCheckInterval):
		}
	}
}

// waitCompleted polls until the container reaches a terminal state,
// treating a non-zero exit code as failure.
func (o *Orchestrator) waitCompleted(ctx context.Context, containerID string) error {
	deadline := time.Now().Add(time.Duration(domain.DefaultHealthCheckRetries) * domain.DefaultHealthCheckTimeout)
	for {
		info, err := o.client.InspectContainer(containerID)
		if err != nil {
			return err
		}
		switch info.Status {
		case engine.ContainerStatusExited, engine.ContainerStatusDead:
			if info.ExitCode != 0 {
				return fmt.Errorf("exited with code %d", info.ExitCode)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for terminal state")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(domain.DefaultHealthCheckInterval):
		}
	}
}

func (o *Orchestrator) createService(groupName string, svc domain.Service) (string, error) {
	spec := buildContainerSpec(groupName, svc)

	exists, err := o.client.ImageExists(svc.Image)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := o.client.PullImage(svc.Image, engine.PullOptions{}); err != nil {
			return "", err
		}
	}

	return o.client.CreateContainer(spec)
}

func buildContainerSpec(groupName string, svc domain.Service) engine.ContainerSpec {
	name := containerName(groupName, svc)

	labels := map[string]string{LabelGroup: groupName, LabelService: svc.Name}
	for k, v := range svc.Labels {
		labels[k] = v
	}

	var ports []engine.PortBinding
	for _, p := range svc.Ports {
		ports = append(ports, engine.PortBinding{ContainerPort: p.ContainerPort, HostPort: p.HostPort, Protocol: p.Protocol})
	}

	var volumes []engine.VolumeMount
	for _, v := range svc.Volumes {
		volumes = append(volumes, engine.VolumeMount{Source: v.HostPath, Target: v.ContainerPath, ReadOnly: v.ReadOnly})
	}

	var networks []string
	aliases := make(map[string][]string, len(svc.Networks))
	for _, n := range svc.Networks {
		qualified := qualifiedNetworkName(groupName, n)
		networks = append(networks, qualified)
		aliases[qualified] = []string{svc.Name}
	}

	return engine.ContainerSpec{
		Name: name, Image: svc.Image, Command: svc.Command, Entrypoint: svc.Entrypoint,
		Env: svc.Environment, Labels: labels, Ports: ports, Volumes: volumes,
		Networks: networks, NetworkAliases: aliases, WorkingDir: svc.WorkingDir, User: svc.User,
		RestartPolicy: svc.Restart, Resources: svc.Resources, HealthCheck: svc.HealthCheck,
	}
}

func containerName(groupName string, svc domain.Service) string {
	if svc.ContainerName != "" {
		return svc.ContainerName
	}
	return fmt.Sprintf("%s-%s", groupName, svc.Name)
}

func qualifiedNetworkName(groupName, networkName string) string {
	return fmt.Sprintf("%s_%s", groupName, networkName)
}

func (o *Orchestrator) containersByGroup(groupName string) ([]engine.ContainerInfo, error) {
	return o.client.ListContainers(engine.ListOptions{
		All:     true,
		Filters: map[string]string{"label": fmt.Sprintf("%s=%s", LabelGroup, groupName)},
	})
}

// findContainer looks up a container by its exact, qualified name.
// Engines that only narrow by filter (rather than guaranteeing an exact
// match) are handled by re-checking the name client-side.
func (o *Orchestrator) findContainer(name string) (engine.ContainerInfo, error) {
	containers, err := o.client.ListContainers(engine.ListOptions{
		All:     true,
		Filters: map[string]string{"name": name},
	})
	if err != nil {
		return engine.ContainerInfo{}, err
	}
	for _, c := range containers {
		if c.Name == name {
			return c, nil
		}
	}
	return engine.ContainerInfo{}, engine.ErrContainerNotFound
}

// Stop stops every running container belonging to group in reverse
// topological order, so a service is stopped only after everything that
// depends on it, continuing past individual failures (spec.md §4.5).
func (o *Orchestrator) Stop(ctx context.Context, group *domain.ServiceGroup) []string {
	var messages []string

	ordered, err := orchestration.TopologicalSort(group.Services)
	if err != nil {
		return []string{err.Error()}
	}

	containers, err := o.containersByGroup(group.Name)
	if err != nil {
		return []string{err.Error()}
	}
	byName := make(map[string]engine.ContainerInfo, len(containers))
	for _, c := range containers {
		byName[c.Name] = c
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		svc := ordered[i]
		c, ok := byName[containerName(group.Name, svc)]
		if !ok || c.Status != engine.ContainerStatusRunning {
			continue
		}
		timeout := stopGracePeriod(svc)
		if err := o.client.StopContainer(c.ID, &timeout); err != nil {
			messages = append(messages, fmt.Sprintf("stop %s: %v", c.Name, err))
		}
	}
	return messages
}

func stopGracePeriod(svc domain.Service) time.Duration {
	if svc.StopGracePeriod > 0 {
		return svc.StopGracePeriod
	}
	return defaultStopGracePeriod
}

// Remove stops (in reverse topological order) and removes every
// container in group, then removes each of the group's networks — but
// only the ones with no foreign container still attached, per spec.md
// §4.5. A network a sibling group is still using is left in place.
func (o *Orchestrator) Remove(ctx context.Context, group *domain.ServiceGroup) []string {
	messages := o.Stop(ctx, group)

	containers, err := o.containersByGroup(group.Name)
	if err != nil {
		return append(messages, err.Error())
	}
	for _, c := range containers {
		if err := o.client.RemoveContainer(c.ID, engine.RemoveOptions{Force: true}); err != nil {
			messages = append(messages, fmt.Sprintf("remove %s: %v", c.Name, err))
		}
	}

	for name := range group.Networks {
		qualified := qualifiedNetworkName(group.Name, name)
		detail, err := o.client.NetworkInspect(qualified)
		if err != nil {
			if errors.Is(err, engine.ErrNetworkNotFound) {
				continue
			}
			messages = append(messages, fmt.Sprintf("inspect network %s: %v", name, err))
			continue
		}
		if len(detail.Containers) > 0 {
			messages = append(messages, fmt.Sprintf("network %q left in place: foreign container(s) still attached", name))
			continue
		}
		if err := o.client.RemoveNetwork(qualified); err != nil {
			messages = append(messages, fmt.Sprintf("remove network %s: %v", name, err))
		}
	}
	return messages
}

// StatusReport is the aggregate runtime status of a service group
// together with the per-container detail it was computed from.
type StatusReport struct {
	Status     domain.GroupStatus
	Containers []engine.ContainerInfo
}

// Status reports each service's container and the group's aggregate
// status (spec.md §4.5): running if every service's container is
// running, partially-running if only some are, failed if any has
// crashed, stopped if containers exist but none are running, and
// unknown if nothing has been created yet.
func (o *Orchestrator) Status(ctx context.Context, group *domain.ServiceGroup) (StatusReport, error) {
	containers, err := o.containersByGroup(group.Name)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{Status: aggregateStatus(group, containers), Containers: containers}, nil
}

func aggregateStatus(group *domain.ServiceGroup, containers []engine.ContainerInfo) domain.GroupStatus {
	byService := make(map[string]engine.ContainerInfo, len(containers))
	for _, c := range containers {
		if name, ok := c.Labels[LabelService]; ok {
			byService[name] = c
		}
	}

	var present, running, crashed int
	for name := range group.Services {
		c, ok := byService[name]
		if !ok {
			continue
		}
		present++
		switch {
		case c.Status == engine.ContainerStatusRunning:
			running++
		case c.Status == engine.ContainerStatusExited && c.ExitCode != 0:
			crashed++
		case c.Status == engine.ContainerStatusDead:
			crashed++
		}
	}

	switch {
	case len(group.Services) > 0 && running == len(group.Services):
		return domain.GroupRunning
	case running > 0:
		return domain.GroupPartiallyRunning
	case present == 0:
		return domain.GroupUnknown
	case crashed > 0:
		return domain.GroupFailed
	default:
		return domain.GroupStopped
	}
}
