package datasource

import (
	"context"

	domain "echo-scaffold/internal/domain/datasource"
)

// MockSource stands in for a database. It answers no queries, so every
// database-dependent path reports domain.ErrUnimplemented.
type MockSource struct{}

var _ domain.DataSource = MockSource{}

func NewMockSource() MockSource { return MockSource{} }

func (MockSource) Probe(context.Context) error { return domain.ErrUnimplemented }

func (MockSource) Close() error { return nil }
