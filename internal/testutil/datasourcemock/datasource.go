package datasourcemock

import (
	"context"

	"echo-scaffold/internal/domain/datasource"
)

// Source is a function-backed mock that satisfies datasource.DataSource.
type Source struct {
	ProbeFn func(ctx context.Context) error
	CloseFn func() error

	ProbeCalls int
}

var _ datasource.DataSource = (*Source)(nil)

func (m *Source) Probe(ctx context.Context) error {
	m.ProbeCalls++
	if m.ProbeFn != nil {
		return m.ProbeFn(ctx)
	}
	return nil
}

func (m *Source) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}
