package typhoon

import "strings"

// Merge combines per-source cyclone lists in the order given. The first
// source to report a storm wins; later sources' duplicates are dropped.
// Identity is the case-insensitive international name, falling back to the
// display name for sources that publish only one.
func Merge(groups ...[]Cyclone) []Cyclone {
	merged := make([]Cyclone, 0)
	seen := make(map[string]bool)

	for _, group := range groups {
		for _, cyclone := range group {
			key := mergeKey(cyclone)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, cyclone)
		}
	}

	return merged
}

func mergeKey(cyclone Cyclone) string {
	name := cyclone.InternationalName
	if name == "" {
		name = cyclone.Name
	}
	return strings.ToLower(strings.TrimSpace(name))
}
