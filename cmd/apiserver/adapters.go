package main

import (
	"context"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// dictionaryCheck builds the readiness probe for the terminology store. The
// store is immutable after startup, so the only failure mode left is an
// empty dictionary, which would make every resolution come back unresolved.
func dictionaryCheck(store *terminology.Store) func(context.Context) error {
	return func(context.Context) error {
		if store.NumTerms() == 0 {
			return errors.Unavailable("terminology dictionary is empty")
		}
		return nil
	}
}
