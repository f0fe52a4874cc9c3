package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// MatchConfidence scores between 0.1 and 1.0 how well name matches query.
// An exact match scores 1.0, containment in either direction 0.7 to 1.0,
// and a fuzzy subsequence match at most 0.7.
func MatchConfidence(query, name string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))

	if q == "" || n == "" {
		return 0.1
	}
	if q == n {
		return 1.0
	}

	if strings.Contains(n, q) {
		ratio := float64(len(q)) / float64(len(n))
		return 0.8 + ratio*0.2
	}
	if strings.Contains(q, n) {
		ratio := float64(len(n)) / float64(len(q))
		return 0.7 + ratio*0.2
	}

	matches := fuzzy.Find(q, []string{n})
	if len(matches) == 0 {
		return 0.1
	}
	// Fuzzy scores grow with the pattern; scale into [0.1, 0.7].
	maxExpected := float64(len(q) * 2)
	confidence := float64(matches[0].Score) / maxExpected * 0.7
	return min(0.7, max(0.1, confidence))
}
