package orchestration

import (
	"fmt"
	"sort"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// CycleError carries the specific cycle detected by TopologicalSort, so
// callers can render it as a single human-readable message containing
// every service name on the cycle (spec.md §8, scenario S2).
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency: %v", e.Cycle)
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// TopologicalSort produces a deterministic linear order of services such
// that every dependency precedes its dependents, using a depth-first
// search with temporary/permanent marks for cycle detection (spec.md
// §4.5). Services are visited in name-sorted order so the result is
// reproducible across runs over the same group.
func TopologicalSort(services map[string]domain.Service) ([]domain.Service, error) {
	const (
		unmarked = iota
		temporary
		permanent
	)

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	mark := make(map[string]int, len(names))
	var path []string
	var result []domain.Service
	var cycleErr *CycleError

	var visit func(name string) bool
	visit = func(name string) bool {
		switch mark[name] {
		case permanent:
			return false
		case temporary:
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			cycleErr = &CycleError{Cycle: cycle}
			return true
		}

		mark[name] = temporary
		path = append(path, name)

		svc := services[name]
		deps := make([]string, len(svc.DependsOn))
		for i, d := range svc.DependsOn {
			deps[i] = d.Target
		}
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := services[dep]; !ok {
				continue // unknown dependency target is a Validate()-level error, not ours to report
			}
			if visit(dep) {
				return true
			}
		}

		path = path[:len(path)-1]
		mark[name] = permanent
		result = append(result, svc)
		return false
	}

	for _, name := range names {
		if mark[name] == unmarked {
			if visit(name) {
				return nil, cycleErr
			}
		}
	}

	return result, nil
}
