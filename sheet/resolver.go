package sheet

import (
	"sort"

	"template-service/models"
)

// ResolutionSource says which branch produced a product's final image list.
type ResolutionSource int

const (
	// FromOriginal means neither an override nor scenarios existed; the
	// original row data stands.
	FromOriginal ResolutionSource = iota
	// FromScenarios means the list came from replaying scenario history.
	FromScenarios
	// FromOverride means the materialized export override won.
	FromOverride
)

func (s ResolutionSource) String() string {
	switch s {
	case FromOverride:
		return "override"
	case FromScenarios:
		return "scenarios"
	default:
		return "original"
	}
}

// Resolution is the outcome of resolving one product's image list.
// Categories is only set when the override supplied one.
type Resolution struct {
	Source     ResolutionSource
	URLs       []string
	Categories []string
}

// Resolve replays scenario history against a product's original image list.
// Scenarios are applied in ascending CreatedAt order (stable, so equal
// timestamps keep store iteration order): a REPLACE variant discards the
// current list in favor of the scenario's, an APPEND variant concatenates.
// The result never aliases originalURLs or any scenario's slice.
func Resolve(originalURLs []string, scenarios []models.Scenario) []string {
	ordered := make([]models.Scenario, len(scenarios))
	copy(ordered, scenarios)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	result := cloneStrings(originalURLs)
	for _, sc := range ordered {
		if sc.Mode.IsReplace() {
			result = cloneStrings(sc.ImageURLs)
		} else {
			result = append(result, sc.ImageURLs...)
		}
	}
	return result
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
