// Package deployment provides pure functions for deployment planning.
//
// This package contains the functional core logic for transforming compose
// specifications into Docker execution plans. All functions are pure
// (no I/O, no side effects) and comply with ADR-002 "Values as Boundaries".
//
// # Functions
//
//   - Naming: Generate consistent resource names (NetworkName, VolumeName, ContainerName)
//   - Ordering: Sort services by dependencies (TopologicalSort)
//   - Variables: Substitute environment variable placeholders (SubstituteVariables)
//   - Ports: Convert port bindings to domain types (ConvertPorts)
//   - Container: Build container plans from compose services (BuildContainerPlan)
//
// # Usage
//
// Nothing else in this module imports this package: the imperative shell
// (internal/shell/orchestrator) orders and builds containers with
// internal/core/orchestration and its own helpers. A caller would use it
// like this:
//
//	networkName := deployment.NetworkName(deploymentID)
//	orderedServices := deployment.TopologicalSort(services)
//	plan := deployment.BuildContainerPlan(params)
package deployment
