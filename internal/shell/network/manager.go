// Package network implements the Network Manager (C3): creating,
// attaching, and probing the networks a service group's containers run on.
package network

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/core/netplan"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

// ErrUnreachable is returned by Probe when the target's attached networks
// are known but none of them route to it from the source container.
var ErrUnreachable = errors.New("target not reachable from source container on any attached network")

// ErrTargetNotRunning is returned by Probe when the target container
// exists but is not running.
var ErrTargetNotRunning = errors.New("target container is not running")

// ErrNoAttachedNetworks is returned by Probe when the target container
// has no network attachments to probe.
var ErrNoAttachedNetworks = errors.New("target container has no attached networks")

// Manager creates and inspects networks via a Client, applying
// netplan's template-expansion rules before any network is created.
type Manager struct {
	client engine.Client
}

// New builds a Manager over the given engine client.
func New(client engine.Client) *Manager {
	return &Manager{client: client}
}

// Create expands tmpl against overrides and creates the resulting
// network, returning its engine-assigned ID.
func (m *Manager) Create(tmpl domain.NetworkTemplate, overrides netplan.Overrides) (string, error) {
	expanded := netplan.Expand(tmpl, overrides.Name, overrides)
	driverOpts := netplan.ExpandDriverOptions(tmpl, overrides.Options)

	return m.client.CreateNetwork(engine.NetworkSpec{
		Name:       expanded.Name,
		Driver:     expanded.Driver,
		Subnet:     expanded.Subnet,
		Gateway:    expanded.Gateway,
		Internal:   expanded.Internal,
		EnableIPv6: expanded.EnableIPv6,
		Options:    driverOpts,
		Labels:     expanded.Labels,
	})
}

// Delete removes a network by name or ID.
func (m *Manager) Delete(networkID string) error {
	return m.client.RemoveNetwork(networkID)
}

// Attach connects a container to a network under the given aliases
// (service name first, so containers reach each other by service name).
func (m *Manager) Attach(networkID, containerID string, aliases []string) error {
	return m.client.ConnectNetwork(networkID, containerID, aliases)
}

// Detach disconnects a container from a network.
func (m *Manager) Detach(networkID, containerID string, force bool) error {
	return m.client.DisconnectNetwork(networkID, containerID, force)
}

// Inspect returns the connected endpoints for a network.
func (m *Manager) Inspect(name string) (engine.NetworkDetail, error) {
	return m.client.NetworkInspect(name)
}

// List returns every network known to the container engine.
func (m *Manager) List() ([]engine.NetworkDetail, error) {
	return m.client.ListNetworks()
}

// ProbeResult names the network a reachability probe succeeded over and
// the target's address on it.
type ProbeResult struct {
	Network string
	IPv4    string
}

// attachment is one network a container is connected to, with its
// address on that network.
type attachment struct {
	network string
	ipv4    string
}

// Probe checks whether targetContainerID is reachable from
// sourceContainerID: it inspects every network the target is attached
// to and pings the target's address on each in turn, returning the
// first network that answers (spec.md §4.3). It fails with
// ErrTargetNotRunning if the target isn't running, and
// ErrNoAttachedNetworks if the target has no network attachments at all.
func (m *Manager) Probe(ctx context.Context, sourceContainerID, targetContainerID string) (ProbeResult, error) {
	target, err := m.client.InspectContainer(targetContainerID)
	if err != nil {
		return ProbeResult{}, err
	}
	if target.Status != engine.ContainerStatusRunning {
		return ProbeResult{}, fmt.Errorf("%w: %s", ErrTargetNotRunning, targetContainerID)
	}

	attachments, err := m.attachmentsOf(target.Name)
	if err != nil {
		return ProbeResult{}, err
	}
	if len(attachments) == 0 {
		return ProbeResult{}, fmt.Errorf("%w: %s", ErrNoAttachedNetworks, targetContainerID)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	for _, a := range attachments {
		res, err := m.client.Exec(probeCtx, sourceContainerID, []string{"ping", "-c", "1", "-W", "2", a.ipv4})
		if err == nil && res.ExitCode == 0 {
			return ProbeResult{Network: a.network, IPv4: a.ipv4}, nil
		}
	}
	return ProbeResult{}, fmt.Errorf("%w: %s", ErrUnreachable, targetContainerID)
}

// attachmentsOf returns every network containerName is connected to,
// sorted by network name for deterministic probe order.
func (m *Manager) attachmentsOf(containerName string) ([]attachment, error) {
	networks, err := m.client.ListNetworks()
	if err != nil {
		return nil, err
	}

	var attachments []attachment
	for _, n := range networks {
		ep, ok := n.Containers[containerName]
		if !ok || ep.IPv4Address == "" {
			continue
		}
		attachments = append(attachments, attachment{network: n.Name, ipv4: stripCIDR(ep.IPv4Address)})
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].network < attachments[j].network })
	return attachments, nil
}

// stripCIDR trims a Docker-reported "ip/prefix" address down to the bare
// IP, leaving addresses already in that form untouched.
func stripCIDR(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}
