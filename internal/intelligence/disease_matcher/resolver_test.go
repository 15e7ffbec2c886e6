package disease_matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/intelligence/disease_matcher"
)

type mapSource struct {
	termToConcepts map[string][]string
	conceptToCodes map[string][]string
}

func (s *mapSource) TermToConcepts() (map[string][]string, error) { return s.termToConcepts, nil }
func (s *mapSource) ConceptToCodes() (map[string][]string, error) { return s.conceptToCodes, nil }

// newTestResolver builds a resolver over a small dictionary mirroring the
// common cardiology/oncology fixtures used across the test suite.
func newTestResolver(t *testing.T) *disease_matcher.Resolver {
	t.Helper()
	store, err := terminology.NewStore(&mapSource{
		termToConcepts: map[string][]string{
			"hypertension":           {"C001"},
			"high blood pressure":    {"C001"},
			"chronic kidney disease": {"C002"},
			"deep vein thrombosis":   {"C003"},
			"atrial fibrillation":    {"C004"},
			"cancer":                 {"C005"},
			"b cell lymphoma":        {"C011", "C010"},
		},
		conceptToCodes: map[string][]string{
			"C001": {"I10"},
			"C002": {"N18.9"},
			"C003": {"I82.40"},
			"C004": {"I48.91"},
			"C005": {"C80.1"},
			"C010": {"C83.3"},
			"C011": {"C85.1"},
		},
	})
	require.NoError(t, err)
	return disease_matcher.NewResolver(store, nil)
}

func TestExactMatch_WithNormalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		term         string
		wantConcepts []string
	}{
		{"Hypertension", []string{"C001"}},
		{"high blood pressure", []string{"C001"}},
		{"CKD", []string{"C002"}},
		{"DVT", []string{"C003"}},
		{"AFIB", []string{"C004"}},
		{"cancers", []string{"C005"}},
		{"unknown", nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.term, func(t *testing.T) {
			t.Parallel()
			r := newTestResolver(t)
			got := r.ExactMatch(tc.term)
			concepts := make([]string, 0, len(got))
			for _, m := range got {
				concepts = append(concepts, m.Concept)
			}
			if tc.wantConcepts == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.wantConcepts, concepts)
			}
		})
	}
}

func TestExactMatch_ScoresAndCodes(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	got := r.ExactMatch("HTN")

	require.Len(t, got, 1)
	assert.Equal(t, "hypertension", got[0].Matched)
	assert.Equal(t, float64(100), got[0].Score)
	assert.Equal(t, "C001", got[0].Concept)
	assert.Equal(t, []string{"I10"}, got[0].Codes)
}

func TestExactMatch_AmbiguousTermEmitsConceptsInOrder(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	got := r.ExactMatch("B Cell Lymphoma")

	require.Len(t, got, 2)
	// Concept lists are sorted at store construction.
	assert.Equal(t, "C010", got[0].Concept)
	assert.Equal(t, []string{"C83.3"}, got[0].Codes)
	assert.Equal(t, "C011", got[1].Concept)
	assert.Equal(t, []string{"C85.1"}, got[1].Codes)
	for _, m := range got {
		assert.Equal(t, float64(100), m.Score)
		assert.Equal(t, "b cell lymphoma", m.Matched)
	}
}

func TestFuzzyMatch_FindsClosestTerm(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	got := r.FuzzyMatch("Hypertenshun", 2, 80)

	require.Len(t, got, 1)
	assert.Equal(t, "hypertension", got[0].Matched)
	assert.InDelta(t, 83.333, got[0].Score, 0.001)
	assert.Equal(t, "C001", got[0].Concept)
	assert.Equal(t, []string{"I10"}, got[0].Codes)
}

func TestFuzzyMatch_ThresholdAppliedAfterRanking(t *testing.T) {
	t.Parallel()

	// The best candidate scores ~83.3, below the default 85 threshold, so
	// the result is empty even though a plausible candidate exists.
	r := newTestResolver(t)
	got := r.FuzzyMatch("Hypertenshun", 3, 85)
	assert.Empty(t, got)
}

func TestFuzzyMatch_AllScoresMeetThreshold(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	for _, m := range r.FuzzyMatch("hypertensio", 3, 50) {
		assert.GreaterOrEqual(t, m.Score, float64(50))
	}
}

func TestFuzzyMatch_AmbiguousCandidateFansOut(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	got := r.FuzzyMatch("b cell lymfoma", 3, 85)

	require.Len(t, got, 2)
	assert.Equal(t, got[0].Matched, got[1].Matched)
	assert.Equal(t, got[0].Score, got[1].Score)
	assert.Equal(t, "C010", got[0].Concept)
	assert.Equal(t, "C011", got[1].Concept)
}

func TestFuzzyMatch_RepeatCallsReturnIdenticalResults(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	first := r.FuzzyMatch("Hypertenshun", 2, 80)
	second := r.FuzzyMatch("Hypertenshun", 2, 80)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.FuzzyCacheSize())
}

func TestFuzzyMatch_CacheIgnoresLimitAndThreshold(t *testing.T) {
	t.Parallel()

	// First call filters everything out; the cached empty result is then
	// served even for a threshold that would have matched.
	r := newTestResolver(t)
	assert.Empty(t, r.FuzzyMatch("Hypertenshun", 3, 101))
	assert.Empty(t, r.FuzzyMatch("Hypertenshun", 3, 0))
	assert.Equal(t, 1, r.FuzzyCacheSize())

	// And the converse: a permissive first call fixes a non-empty result.
	r2 := newTestResolver(t)
	permissive := r2.FuzzyMatch("Hypertenshun", 2, 0)
	require.NotEmpty(t, permissive)
	assert.Equal(t, permissive, r2.FuzzyMatch("Hypertenshun", 2, 101))
}

func TestFuzzyMatch_CachesEmptyResults(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	assert.Empty(t, r.FuzzyMatch("xyzzy plugh", 3, 85))
	assert.Equal(t, 1, r.FuzzyCacheSize())
	assert.Empty(t, r.FuzzyMatch("xyzzy plugh", 3, 85))
	assert.Equal(t, 1, r.FuzzyCacheSize())
}

func TestBestMatch_ExactWinsOverFuzzy(t *testing.T) {
	t.Parallel()

	// "hypertension" has an exact entry and would also fuzzy-match other
	// corpus terms at a low threshold; only the exact result may surface.
	r := newTestResolver(t)
	got := r.BestMatch("hypertension", 5, 10)

	require.Len(t, got, 1)
	assert.Equal(t, float64(100), got[0].Score)
	assert.Equal(t, "C001", got[0].Concept)
	assert.Equal(t, 0, r.FuzzyCacheSize(), "fuzzy search must not run on exact hits")
}

func TestBestMatch_FallsBackToFuzzy(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	got := r.BestMatch("Hypertenshun", 3, 80)

	require.NotEmpty(t, got)
	assert.Equal(t, "C001", got[0].Concept)
	assert.Less(t, got[0].Score, float64(100))
}

func TestBestMatch_UnresolvableReturnsEmpty(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	assert.Empty(t, r.BestMatch("xyzzy plugh", 3, 85))
}
