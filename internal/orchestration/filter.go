package orchestration

import (
	"fmt"
	"path"

	"github.com/fairdata/faircheck/internal/models"
)

// FilterTests returns the subset of specs whose Name or Interface matches at
// least one of the given glob patterns, keeping catalog order. An empty
// patterns slice returns all specs unchanged.
func FilterTests(specs []models.TestSpec, patterns []string) ([]models.TestSpec, error) {
	if len(patterns) == 0 {
		return specs, nil
	}

	var matched []models.TestSpec
	for _, spec := range specs {
		ok, err := matchesAny(spec, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, spec)
		}
	}
	return matched, nil
}

// matchesAny reports whether a spec's Name or Interface matches any pattern.
func matchesAny(spec models.TestSpec, patterns []string) (bool, error) {
	for _, p := range patterns {
		nameMatch, err := path.Match(p, spec.Name)
		if err != nil {
			return false, fmt.Errorf("invalid test filter pattern %q: %w", p, err)
		}
		if nameMatch {
			return true, nil
		}
		ifaceMatch, err := path.Match(p, spec.Interface)
		if err != nil {
			return false, fmt.Errorf("invalid test filter pattern %q: %w", p, err)
		}
		if ifaceMatch {
			return true, nil
		}
	}
	return false, nil
}
