package staleness

import (
	"slices"
	"strings"
)

// UpdatedService carries the qualifying tags of a service in listing order.
type UpdatedService struct {
	Service string
	Matches []DateTaggedMatch
}

// Latest returns the first match in listing order.
func (updated UpdatedService) Latest() DateTaggedMatch {
	return updated.Matches[0]
}

// ErroredService records why a service could not be classified.
type ErroredService struct {
	Service string
	Reason  string
	Cause   error
}

// Report holds the three disjoint classifications in scan order.
type Report struct {
	Updated    []UpdatedService
	NotUpdated []string
	Errored    []ErroredService
	FoundAny   bool
}

// StaleServices returns the not-updated services sorted by name.
func (report Report) StaleServices() []string {
	stale := slices.Clone(report.NotUpdated)
	slices.Sort(stale)
	return stale
}

// SortedUpdated returns updated services sorted by name.
func (report Report) SortedUpdated() []UpdatedService {
	sorted := slices.Clone(report.Updated)
	slices.SortFunc(sorted, func(left UpdatedService, right UpdatedService) int {
		return strings.Compare(left.Service, right.Service)
	})
	return sorted
}

// SortedErrored returns errored services sorted by name then reason.
func (report Report) SortedErrored() []ErroredService {
	sorted := slices.Clone(report.Errored)
	slices.SortFunc(sorted, func(left ErroredService, right ErroredService) int {
		if comparison := strings.Compare(left.Service, right.Service); comparison != 0 {
			return comparison
		}
		return strings.Compare(left.Reason, right.Reason)
	})
	return sorted
}
