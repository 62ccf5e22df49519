package cache

import "errors"

var (
	// ErrInvalidNamespace is returned when a namespace name fails validation
	// (charset [A-Za-z0-9_-], length 1 to 50).
	ErrInvalidNamespace = errors.New("invalid namespace name")

	// ErrUnknownStrategy is returned when a namespace config requests an eviction
	// strategy that was never registered on the manager.
	ErrUnknownStrategy = errors.New("unknown eviction strategy")

	// ErrEmptyStrategyName is returned by RegisterStrategy for a blank name.
	ErrEmptyStrategyName = errors.New("strategy name must not be empty")

	// ErrNilStrategyFactory is returned by RegisterStrategy for a nil factory.
	ErrNilStrategyFactory = errors.New("strategy factory must not be nil")
)
