// Package netplan contains the pure template-expansion logic behind the
// Network Manager (C3): merging a NetworkTemplate with caller overrides
// into a concrete ServiceNetwork. No I/O.
package netplan

import "github.com/artpar/smoothstack/internal/core/domain"

// Overrides carries the subset of a ServiceNetwork a caller may override
// when provisioning from a template. Zero-value fields mean "no override,
// keep the template's value" (spec.md §4.3).
type Overrides struct {
	Name    string
	Driver  string
	Subnet  string
	Gateway string
	Options map[string]string
	Labels  map[string]string
}

// Expand merges a NetworkTemplate with Overrides into a concrete
// ServiceNetwork. Per spec.md §8's testable property:
//
//	N.labels ⊇ T.labels
//	N.driver = O.driver ?? T.driver
//	N.subnet = O.subnet ?? T.subnet
//
// Labels are unioned (override wins on key collision). Driver options are
// not touched here; ExpandDriverOptions merges them the same way.
func Expand(tmpl domain.NetworkTemplate, name string, o Overrides) domain.ServiceNetwork {
	result := domain.ServiceNetwork{
		Name:       firstNonEmpty(o.Name, name, tmpl.Name),
		Driver:     firstNonEmpty(o.Driver, tmpl.Driver),
		Subnet:     firstNonEmpty(o.Subnet, tmpl.Subnet),
		Gateway:    firstNonEmpty(o.Gateway, tmpl.Gateway),
		Internal:   tmpl.Internal,
		EnableIPv6: tmpl.EnableIPv6,
	}

	result.Labels = make(map[string]string, len(tmpl.Labels)+len(o.Labels))
	for k, v := range tmpl.Labels {
		result.Labels[k] = v
	}
	for k, v := range o.Labels {
		result.Labels[k] = v
	}

	return result
}

// ExpandDriverOptions merges a template's driver options with overrides,
// override wins on key collision. Kept separate from Expand because
// ServiceNetwork itself carries no options map (options are an engine
// concern at network-creation time, not part of the persisted entity).
func ExpandDriverOptions(tmpl domain.NetworkTemplate, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(tmpl.Options)+len(overrides))
	for k, v := range tmpl.Options {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
