package datasource

import (
	"context"
	"fmt"
	"time"

	domain "echo-scaffold/internal/domain/datasource"

	"gorm.io/gorm"
)

// probeValue is bound into the round-trip query and must come back unchanged.
const probeValue int64 = 150

// GormSource is the connected data source backed by a gorm pool.
type GormSource struct {
	db             *gorm.DB
	acquireTimeout time.Duration
}

var _ domain.DataSource = (*GormSource)(nil)

func NewGormSource(db *gorm.DB, acquireTimeout time.Duration) *GormSource {
	return &GormSource{db: db, acquireTimeout: acquireTimeout}
}

// Probe binds probeValue, reads it back and compares. Waiting for a pooled
// connection counts against acquireTimeout.
func (s *GormSource) Probe(ctx context.Context) error {
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	var got int64
	if err := s.db.WithContext(ctx).Raw("SELECT ?", probeValue).Scan(&got).Error; err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	if got != probeValue {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrProbeMismatch, got, probeValue)
	}
	return nil
}

func (s *GormSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
