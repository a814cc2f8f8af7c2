package source

import "strings"

// selectAsset picks the single name matching the platform.
//
// Names containing osName are candidates. When more than one remains, only
// names containing osName+bitness survive, excluding .asc signatures. Anything
// other than exactly one survivor is an AmbiguousMatchError; there is no
// guessing.
func selectAsset(names []string, osName, bitness string) (int, error) {
	var candidates []int
	for i, name := range names {
		if strings.Contains(name, osName) {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) > 1 {
		token := osName + bitness
		var narrowed []int
		for _, i := range candidates {
			if strings.Contains(names[i], token) && !strings.HasSuffix(names[i], ".asc") {
				narrowed = append(narrowed, i)
			}
		}
		candidates = narrowed
	}

	if len(candidates) != 1 {
		picked := make([]string, 0, len(candidates))
		for _, i := range candidates {
			picked = append(picked, names[i])
		}
		return -1, &AmbiguousMatchError{OS: osName, Bitness: bitness, Candidates: picked}
	}
	return candidates[0], nil
}

// selectExact returns the single entry ending in suffix.
func selectExact(entries []string, suffix, osName, bitness string) (string, error) {
	var matches []string
	for _, e := range entries {
		if strings.HasSuffix(e, suffix) {
			matches = append(matches, e)
		}
	}
	if len(matches) != 1 {
		return "", &AmbiguousMatchError{OS: osName, Bitness: bitness, Candidates: matches}
	}
	return matches[0], nil
}
