package domain

import "time"

// =============================================================================
// Dependency Source
// =============================================================================

// Ecosystem is a package ecosystem a dependency source serves.
type Ecosystem string

const (
	EcosystemPyPI Ecosystem = "pypi"
	EcosystemNPM  Ecosystem = "npm"
)

// SourceStatus is the last-observed runtime status of a dependency source.
type SourceStatus string

const (
	SourceUnknown SourceStatus = "unknown"
	SourceOnline  SourceStatus = "online"
	SourceOffline SourceStatus = "offline"
	SourceSlow    SourceStatus = "slow"
	SourceError   SourceStatus = "error"
)

// DependencySource is one registered package source/mirror.
type DependencySource struct {
	Name      string        `yaml:"name" json:"name"`
	URL       string        `yaml:"url" json:"url"`
	Ecosystem Ecosystem     `yaml:"ecosystem" json:"ecosystem"`
	Priority  int           `yaml:"priority" json:"priority"` // lower = preferred
	Group     string        `yaml:"group" json:"group"`       // e.g. "global", "china", "custom"
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	Status       SourceStatus  `yaml:"status,omitempty" json:"status"`
	LastCheck    time.Time     `yaml:"last_check,omitempty" json:"last_check"`
	LastResponse time.Duration `yaml:"last_response,omitempty" json:"last_response"`
	SuccessCount int           `yaml:"success_count,omitempty" json:"success_count"`
	ErrorCount   int           `yaml:"error_count,omitempty" json:"error_count"`
}

// IsAvailable reports whether this source is currently usable: enabled and
// with a last-observed status of online.
func (s *DependencySource) IsAvailable() bool {
	return s.Enabled && s.Status == SourceOnline
}

// StaleAfter is how long a health check result is trusted before a
// best-source selection re-probes it inline (spec.md §8).
const StaleAfter = time.Hour

// IsStale reports whether this source's last health check is old enough
// that a fresh probe should be taken before relying on its status.
func (s *DependencySource) IsStale(now time.Time) bool {
	return s.LastCheck.IsZero() || now.Sub(s.LastCheck) > StaleAfter
}

// DefaultSourceTimeout is used when a source does not specify its own
// probe timeout.
const DefaultSourceTimeout = 30 * time.Second

// OnlineThreshold is the response-time boundary between "online" and "slow".
const OnlineThreshold = 2 * time.Second
