// Package disease_matcher resolves canonical disease terms to medical
// concepts and diagnosis codes through an exact-then-fuzzy dictionary
// cascade. Exact lookups always win; the fuzzy stage ranks the full term
// corpus by indel similarity and is memoized per resolver instance.
package disease_matcher

import (
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
)

// Match is one resolution candidate for a disease mention.
type Match struct {
	// Matched is the canonical dictionary term the mention resolved to.
	Matched string
	// Score is 100 for exact matches and the similarity ratio (0-100,
	// possibly fractional) for fuzzy matches.
	Score float64
	// Concept is the identifier of the matched medical concept.
	Concept string
	// Codes holds the concept's diagnosis codes; empty (never nil) when the
	// concept has no code in the target system.
	Codes []string
}

// Resolver maps disease mentions to ranked concept/code matches against an
// immutable terminology store.
//
// The fuzzy-match cache is keyed by normalized term only; limit and
// threshold are not part of the key, so the first call per term fixes the
// cached candidate set for the resolver's lifetime. A Resolver is not safe
// for concurrent use; give each worker or request its own instance, they
// share the store.
type Resolver struct {
	store  *terminology.Store
	cache  map[string][]Match
	logger logging.Logger
}

// NewResolver creates a Resolver over store. A nil logger disables logging.
func NewResolver(store *terminology.Store, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{
		store:  store,
		cache:  make(map[string][]Match),
		logger: logger.Named("disease_matcher"),
	}
}

// ExactMatch normalizes term and looks it up in the dictionary. Every
// concept mapped from the canonical form yields one Match with score 100,
// in the store's deterministic concept order. An unknown term returns an
// empty list, never an error.
func (r *Resolver) ExactMatch(term string) []Match {
	norm := terminology.Normalize(term)
	concepts := r.store.ConceptsFor(norm)
	matches := make([]Match, 0, len(concepts))
	for _, concept := range concepts {
		matches = append(matches, Match{
			Matched: norm,
			Score:   100,
			Concept: concept,
			Codes:   r.codesFor(concept),
		})
	}
	return matches
}

// FuzzyMatch normalizes term and ranks the full corpus by similarity,
// keeping the top limit candidates that score at least threshold; each
// surviving candidate fans out to one Match per mapped concept. The result
// (empty included) is cached by normalized term and returned as-is on
// subsequent calls, regardless of the limit and threshold they pass.
func (r *Resolver) FuzzyMatch(term string, limit int, threshold float64) []Match {
	norm := terminology.Normalize(term)
	if cached, ok := r.cache[norm]; ok {
		r.logger.Debug("fuzzy cache hit", logging.String("term", norm))
		return cached
	}

	ranked := TopMatches(norm, r.store.Terms(), limit)
	matches := make([]Match, 0, len(ranked))
	for _, cand := range ranked {
		if cand.Score < threshold {
			continue
		}
		for _, concept := range r.store.ConceptsFor(cand.Term) {
			matches = append(matches, Match{
				Matched: cand.Term,
				Score:   cand.Score,
				Concept: concept,
				Codes:   r.codesFor(concept),
			})
		}
	}
	r.cache[norm] = matches
	return matches
}

// BestMatch resolves term through the cascade: if ExactMatch finds
// anything it is returned immediately and fuzzy matching is skipped
// entirely; otherwise the FuzzyMatch result (possibly empty) is returned.
func (r *Resolver) BestMatch(term string, limit int, threshold float64) []Match {
	if exact := r.ExactMatch(term); len(exact) > 0 {
		return exact
	}
	return r.FuzzyMatch(term, limit, threshold)
}

// FuzzyCacheSize returns the number of normalized terms with a memoized
// fuzzy result.
func (r *Resolver) FuzzyCacheSize() int {
	return len(r.cache)
}

func (r *Resolver) codesFor(concept string) []string {
	if codes := r.store.CodesFor(concept); codes != nil {
		return codes
	}
	return []string{}
}
