// Package source provides the pure best-source selection algorithm for
// dependency sources (C7). This is part of the functional core - all
// functions are pure with no I/O.
package source

import (
	"errors"
	"sort"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// =============================================================================
// Selection Errors
// =============================================================================

var (
	// ErrNoSourcesConfigured is returned when the group has no registered
	// sources at all.
	ErrNoSourcesConfigured = errors.New("no dependency sources configured for this group")

	// ErrNoEnabledSources is returned when every registered source is
	// disabled.
	ErrNoEnabledSources = errors.New("no enabled dependency sources for this group")
)

// =============================================================================
// Selection Request/Result
// =============================================================================

// SelectRequest carries the candidate sources for one ecosystem/group pair.
type SelectRequest struct {
	Sources   []domain.DependencySource
	Ecosystem domain.Ecosystem
	Group     string
}

// SelectResult is the outcome of a selection pass.
type SelectResult struct {
	Selected *domain.DependencySource

	// Fallback is true when no source was currently online and the
	// top-priority enabled source was returned anyway, per spec.md §8's
	// boundary behavior: "no online source, fall back to top-priority
	// with a Source warning".
	Fallback bool

	ConsideredCount    int
	FilteredOutReasons map[string]int
}

// =============================================================================
// Candidate (internal)
// =============================================================================

type sourceCandidate struct {
	source domain.DependencySource
	score  float64
}

// =============================================================================
// Selection Algorithm
// =============================================================================

// Select picks the best dependency source for the requested ecosystem and
// group.
//
// Algorithm:
//  1. Filter to sources matching Ecosystem and Group
//  2. Filter to Enabled sources
//  3. Filter to sources with IsAvailable() == true (enabled && status online)
//  4. Score remaining sources by -Priority (lower Priority value wins)
//  5. Return the highest-scoring source
//
// If step 3 leaves no candidates but step 2 left at least one enabled
// source, Select falls back to the top-priority enabled source and sets
// Fallback true rather than failing outright.
func Select(req SelectRequest) (*SelectResult, error) {
	result := &SelectResult{
		FilteredOutReasons: make(map[string]int),
	}

	if len(req.Sources) == 0 {
		return result, ErrNoSourcesConfigured
	}

	var enabled []domain.DependencySource
	var online []sourceCandidate

	for _, src := range req.Sources {
		if src.Ecosystem != req.Ecosystem || src.Group != req.Group {
			continue
		}
		result.ConsideredCount++

		if !src.Enabled {
			result.FilteredOutReasons["disabled"]++
			continue
		}
		enabled = append(enabled, src)

		if !src.IsAvailable() {
			result.FilteredOutReasons["not_online"]++
			continue
		}
		online = append(online, sourceCandidate{source: src, score: scoreSource(src)})
	}

	if len(enabled) == 0 {
		return result, ErrNoEnabledSources
	}

	if len(online) == 0 {
		best := bestByPriority(enabled)
		result.Selected = &best
		result.Fallback = true
		return result, nil
	}

	sort.Slice(online, func(i, j int) bool {
		return online[i].score > online[j].score
	})

	best := online[0].source
	result.Selected = &best
	return result, nil
}

// scoreSource ranks enabled+online sources by priority: lower Priority
// value is preferred, so the score is its negation.
func scoreSource(src domain.DependencySource) float64 {
	return -float64(src.Priority)
}

// bestByPriority returns the lowest-Priority source among candidates,
// breaking ties by name for determinism.
func bestByPriority(candidates []domain.DependencySource) domain.DependencySource {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Priority < best.Priority || (c.Priority == best.Priority && c.Name < best.Name) {
			best = c
		}
	}
	return best
}
