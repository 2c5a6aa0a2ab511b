package phtrees

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals a caller mistake: a resolver kind that is
	// not configured, or query parameters that contradict each other.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownResolverKind is returned when a geometry kind name is
	// neither "coordinates" nor "symbols".
	ErrUnknownResolverKind = fmt.Errorf("unknown resolver kind: %w", ErrConfiguration)

	// ErrNotFound is returned for death indices that name no node.
	ErrNotFound = errors.New("not found")

	// ErrNoMatch is returned when the spatial index has no candidate pair
	// for a point query.
	ErrNoMatch = fmt.Errorf("no matching pair: %w", ErrNotFound)

	// ErrDuplicateKey is returned when two triples share a death index.
	ErrDuplicateKey = errors.New("duplicate death index")

	// ErrAlreadyResolved is returned by a second Invoke on the same query.
	ErrAlreadyResolved = errors.New("query already resolved")
)
