// Package orchestration contains the pure validation and ordering
// algorithms behind the Service Orchestrator. No I/O: everything here
// operates on an in-memory domain.ServiceGroup.
package orchestration

import "errors"

// ErrCycle is returned by TopologicalSort when the dependency graph
// contains a cycle.
var ErrCycle = errors.New("dependency graph has a cycle")
