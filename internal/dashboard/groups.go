package dashboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GroupMap maps a microservice (pipeline stage) name to the name of
// the collapsible group panel it renders under. The enumeration is
// hand-maintained and incomplete; it is injectable configuration so
// new stages can be added without code changes.
type GroupMap map[string]string

// DefaultGroupMap returns the built-in stage-to-group enumeration.
func DefaultGroupMap() GroupMap {
	return GroupMap{
		"Approve normalization":                      "Normalize",
		"Move to processing directory":               "Verify transfer compliance",
		"Policy checks for access derivatives":       "Policy checks for derivatives",
		"Policy checks for preservation derivatives": "Policy checks for derivatives",
		"Remove the processing directory":            "Store AIP",
		"Store AIP":                                  "Store AIP",
		"Store AIP  (review)":                        "Store AIP",
		"Validate formats":                           "Validation",
		"Validate access derivatives":                "Normalize",
		"Validate preservation derivatives":          "Normalize",
	}
}

// LoadGroupMap merges stage-to-group entries from a YAML file over the
// built-in defaults.
func LoadGroupMap(path string) (GroupMap, error) {
	groups := DefaultGroupMap()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group map %s: %w", path, err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse group map %s: %w", path, err)
	}
	for stage, group := range overrides {
		groups[stage] = group
	}
	return groups, nil
}

// Lookup resolves a stage name to its group, erroring on stages
// missing from the enumeration.
func (g GroupMap) Lookup(stageName string) (string, error) {
	group, ok := g[stageName]
	if !ok {
		return "", fmt.Errorf("no group known for microservice %q: extend the group map", stageName)
	}
	return group, nil
}
