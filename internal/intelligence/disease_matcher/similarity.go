package disease_matcher

import "sort"

// ScoredTerm is one candidate from a similarity ranking of the term corpus.
type ScoredTerm struct {
	Term  string
	Score float64
}

// Ratio computes the normalized indel similarity of two strings on a 0-100
// scale: 100*(1 - d/(|a|+|b|)) where d is the minimum number of insertions
// and deletions turning a into b. Comparison is rune-wise. Two empty strings
// score 100; an empty string against a non-empty one scores 0.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	// indel distance = |a|+|b| - 2*LCS(a,b), so the ratio reduces to the
	// share of runes covered by the longest common subsequence.
	lcs := lcsLength(ra, rb)
	return 100 * float64(2*lcs) / float64(total)
}

// lcsLength returns the length of the longest common subsequence of a and b
// using a two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// TopMatches ranks every corpus term by similarity to query and returns the
// best limit candidates in descending score order. Equal scores keep their
// corpus order, so a sorted corpus yields a fully deterministic ranking.
// No threshold is applied here; callers filter the returned candidates.
func TopMatches(query string, corpus []string, limit int) []ScoredTerm {
	if limit <= 0 || len(corpus) == 0 {
		return nil
	}
	scored := make([]ScoredTerm, len(corpus))
	for i, term := range corpus {
		scored[i] = ScoredTerm{Term: term, Score: Ratio(query, term)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
