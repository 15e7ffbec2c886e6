package terminology

import (
	"fmt"
	"sort"
)

// Store holds the two immutable dictionary tables and the materialized,
// sorted corpus of known canonical terms. It is built once at startup and
// is safe for concurrent reads; nothing mutates it after construction.
type Store struct {
	termToConcepts map[string][]string
	conceptToCodes map[string][]string
	terms          []string
}

// NewStore loads both tables from src, failing fast on any source error.
// Concept and code lists are copied, deduplicated, and sorted so that
// lookup results are deterministic regardless of how the source orders
// them.
func NewStore(src Source) (*Store, error) {
	termToConcepts, err := src.TermToConcepts()
	if err != nil {
		return nil, fmt.Errorf("terminology: loading term-to-concepts: %w", err)
	}
	conceptToCodes, err := src.ConceptToCodes()
	if err != nil {
		return nil, fmt.Errorf("terminology: loading concept-to-codes: %w", err)
	}

	s := &Store{
		termToConcepts: make(map[string][]string, len(termToConcepts)),
		conceptToCodes: make(map[string][]string, len(conceptToCodes)),
		terms:          make([]string, 0, len(termToConcepts)),
	}
	for term, concepts := range termToConcepts {
		s.termToConcepts[term] = sortedSet(concepts)
		s.terms = append(s.terms, term)
	}
	for concept, codes := range conceptToCodes {
		s.conceptToCodes[concept] = sortedSet(codes)
	}
	sort.Strings(s.terms)
	return s, nil
}

// ConceptsFor returns the concept identifiers mapped from an already
// canonical term, in sorted order, or nil when the term is unknown.
// The returned slice is shared internal state and must not be modified.
func (s *Store) ConceptsFor(canonical string) []string {
	return s.termToConcepts[canonical]
}

// CodesFor returns the diagnosis codes for a concept identifier, in sorted
// order, or nil when the concept has no codes. The returned slice is shared
// internal state and must not be modified.
func (s *Store) CodesFor(concept string) []string {
	return s.conceptToCodes[concept]
}

// HasTerm reports whether the canonical term has a dictionary entry.
func (s *Store) HasTerm(canonical string) bool {
	_, ok := s.termToConcepts[canonical]
	return ok
}

// Terms returns the full corpus of known canonical terms in sorted order.
// The returned slice is shared internal state and must not be modified; it
// is the search space for fuzzy matching.
func (s *Store) Terms() []string {
	return s.terms
}

// NumTerms returns the number of distinct canonical terms.
func (s *Store) NumTerms() int {
	return len(s.terms)
}

// NumConcepts returns the number of distinct concept identifiers that have
// at least one code entry.
func (s *Store) NumConcepts() int {
	return len(s.conceptToCodes)
}

// sortedSet copies in, drops duplicates, and sorts the result. A nil or
// empty input yields an empty, non-nil slice.
func sortedSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
