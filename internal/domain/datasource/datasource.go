package datasource

import (
	"context"
	"errors"
)

var (
	// ErrUnimplemented is returned by data sources that cannot answer a query,
	// i.e. the mock.
	ErrUnimplemented = errors.New("datasource: unimplemented")
	// ErrProbeMismatch means the round-trip query returned a different value
	// than the one bound.
	ErrProbeMismatch = errors.New("datasource: probe value mismatch")
)

// DataSource is shared by every request handler. Implementations must be safe
// for concurrent use.
type DataSource interface {
	// Probe runs the fixed diagnostic round-trip query.
	Probe(ctx context.Context) error
	Close() error
}
