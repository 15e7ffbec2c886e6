package terminology

// Source supplies the raw dictionary tables a Store is built from.
// Implementations live in the infrastructure layer (prepared JSON assets);
// the domain only sees the two mappings.
//
// Both methods are called exactly once, at Store construction. Any error is
// fatal for the caller: a partially loaded dictionary must never serve
// lookups.
type Source interface {
	// TermToConcepts returns the mapping from canonical term to the concept
	// identifiers it names.
	TermToConcepts() (map[string][]string, error)

	// ConceptToCodes returns the mapping from concept identifier to its
	// diagnosis codes in the target coding system.
	ConceptToCodes() (map[string][]string, error)
}
