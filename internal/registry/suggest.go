package registry

import "strings"

// suggestThreshold is the minimum similarity score (0.0-1.0) for a name to
// be offered as a did-you-mean hint. Below it, suggestions are more
// confusing than helpful.
const suggestThreshold = 0.5

// ClosestName returns the candidate most similar to name, or "" when none is
// close enough to look like a typo. Comparison is case-insensitive; ties go
// to the earlier candidate so the answer is deterministic.
func ClosestName(name string, candidates []string) string {
	if name == "" {
		return ""
	}

	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := similarity(strings.ToLower(name), strings.ToLower(c))
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// similarity returns a normalized score (0.0-1.0) based on Levenshtein
// distance.
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := max(len([]rune(s1)), len([]rune(s2)))

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the minimum number of single-character
// edits (insertions, deletions, or substitutions) required to change one
// string into another.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Convert to runes for proper Unicode handling
	r1 := []rune(s1)
	r2 := []rune(s2)

	// Optimize for shorter string as columns
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}

	// Use two rows instead of full matrix to save memory: O(min(m,n)) space
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	// Initialize first row
	for j := range prev {
		prev[j] = j
	}

	// Fill the matrix
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
