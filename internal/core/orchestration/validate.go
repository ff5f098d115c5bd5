package orchestration

import "github.com/artpar/smoothstack/internal/core/domain"

// Validate checks a parsed ServiceGroup against the invariants of spec.md
// §3 and returns every violation as a message. Nothing is mutated;
// violations returned here are meant to be shown to the caller verbatim
// before any side effect is attempted.
func Validate(group *domain.ServiceGroup) []string {
	return group.Validate()
}
