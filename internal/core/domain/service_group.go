package domain

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// Service Network
// =============================================================================

// ServiceNetwork is one network belonging to a service group.
type ServiceNetwork struct {
	Name      string            `yaml:"name" json:"name"`
	Driver    string            `yaml:"driver,omitempty" json:"driver,omitempty"`
	Subnet    string            `yaml:"subnet,omitempty" json:"subnet,omitempty"`
	Gateway   string            `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	Internal  bool              `yaml:"internal,omitempty" json:"internal,omitempty"`
	EnableIPv6 bool             `yaml:"enable_ipv6,omitempty" json:"enable_ipv6,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Aliases   []string          `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	FixedIPv4 string            `yaml:"fixed_ipv4,omitempty" json:"fixed_ipv4,omitempty"`
	FixedIPv6 string            `yaml:"fixed_ipv6,omitempty" json:"fixed_ipv6,omitempty"`
}

// =============================================================================
// Group Status
// =============================================================================

// GroupStatus is the aggregated runtime status of a service group.
type GroupStatus string

const (
	GroupUnknown          GroupStatus = "unknown"
	GroupCreated          GroupStatus = "created"
	GroupRunning          GroupStatus = "running"
	GroupPartiallyRunning GroupStatus = "partially-running"
	GroupStopped          GroupStatus = "stopped"
	GroupFailed           GroupStatus = "failed"
)

// =============================================================================
// Service Group
// =============================================================================

// ServiceGroup is a named collection of services and networks deployed
// together. Created by group parse, mutated only via group save, destroyed
// with group.
type ServiceGroup struct {
	Name        string                    `yaml:"name" json:"name"`
	Description string                    `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string                    `yaml:"version,omitempty" json:"version,omitempty"`
	Services    map[string]Service        `yaml:"services" json:"services"`
	Networks    map[string]ServiceNetwork `yaml:"networks,omitempty" json:"networks,omitempty"`
	Status      GroupStatus               `yaml:"status,omitempty" json:"status,omitempty"`
	CreatedAt   time.Time                 `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time                 `yaml:"updated_at" json:"updated_at"`
}

// NewServiceGroup constructs an empty, named ServiceGroup ready to have
// services and networks added to it.
func NewServiceGroup(name, description string) *ServiceGroup {
	now := time.Now()
	return &ServiceGroup{
		Name:        name,
		Description: description,
		Services:    make(map[string]Service),
		Networks:    make(map[string]ServiceNetwork),
		Status:      GroupUnknown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the invariants of spec.md §3 against this group and
// returns every violation as a human-readable message. It mutates nothing;
// an empty slice means the group is valid.
func (g *ServiceGroup) Validate() []string {
	var problems []string

	for name, svc := range g.Services {
		if svc.Name != "" && svc.Name != name {
			problems = append(problems, fmt.Sprintf("service %q: map key does not match service name %q", name, svc.Name))
		}
		for _, dep := range svc.DependsOn {
			if _, ok := g.Services[dep.Target]; !ok {
				problems = append(problems, fmt.Sprintf("service %q depends on unknown service %q", name, dep.Target))
			}
		}
		for _, netName := range svc.Networks {
			if _, ok := g.Networks[netName]; !ok {
				problems = append(problems, fmt.Sprintf("service %q references unknown network %q", name, netName))
			}
		}
	}

	if cycle := g.findCycle(); len(cycle) > 0 {
		problems = append(problems, fmt.Sprintf("circular dependency detected: %v", cycle))
	}

	return problems
}

// findCycle runs a DFS with temporary/permanent marks over the dependency
// graph and returns the first cycle found as an ordered list of service
// names, or nil if the graph is acyclic. Iteration starts in name-sorted
// order so repeated calls over the same group are deterministic.
func (g *ServiceGroup) findCycle() []string {
	const (
		unmarked = iota
		temporary
		permanent
	)

	names := make([]string, 0, len(g.Services))
	for name := range g.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	mark := make(map[string]int, len(names))
	var path []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		switch mark[name] {
		case permanent:
			return false
		case temporary:
			// Found the back-edge; trim path to the cycle itself.
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cycle = append(append([]string{}, path[start:]...), name)
			return true
		}

		mark[name] = temporary
		path = append(path, name)

		svc, ok := g.Services[name]
		if ok {
			for _, dep := range svc.DependsOn {
				if visit(dep.Target) {
					return true
				}
			}
		}

		path = path[:len(path)-1]
		mark[name] = permanent
		return false
	}

	for _, name := range names {
		if mark[name] == unmarked {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}
