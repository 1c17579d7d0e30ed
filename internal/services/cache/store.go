package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/utils"
)

// Repository is the durable diagnosis storage behind a Store.
type Repository interface {
	Create(ctx context.Context, d *models.Diagnosis) error
	GetByID(ctx context.Context, id string) (*models.Diagnosis, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Diagnosis, error)
}

// Store reads through the cache to an optional repository. Without a repository it
// keeps diagnoses in memory only (demo mode).
type Store struct {
	cache *DiagnosisCache
	repo  Repository
}

// NewStore creates a store. repo may be nil.
func NewStore(c *DiagnosisCache, repo Repository) *Store {
	if c == nil {
		c = New(DefaultTTL)
	}
	return &Store{cache: c, repo: repo}
}

// Persistent reports whether diagnoses outlive the cache.
func (s *Store) Persistent() bool {
	return s.repo != nil
}

// Save writes d to the repository, then caches it.
func (s *Store) Save(ctx context.Context, d *models.Diagnosis) error {
	if s.repo != nil {
		if err := s.repo.Create(ctx, d); err != nil {
			return fmt.Errorf("failed to save diagnosis: %w", err)
		}
	}
	s.cache.Set(d)
	return nil
}

// Get returns the diagnosis with id, or models.ErrDiagnosisNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Diagnosis, error) {
	if d, ok := s.cache.Get(id); ok {
		return d, nil
	}
	if s.repo == nil {
		return nil, models.ErrDiagnosisNotFound
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrDiagnosisNotFound) {
			utils.GetLogger().Error("Failed to load diagnosis", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.cache.Set(d)
	return d, nil
}

// Recent lists the newest diagnoses.
func (s *Store) Recent(ctx context.Context, limit int) ([]*models.Diagnosis, error) {
	if s.repo != nil {
		return s.repo.ListRecent(ctx, limit)
	}

	cached := s.cache.Recent(limit)
	out := make([]*models.Diagnosis, len(cached))
	for i := range cached {
		out[i] = &cached[i]
	}
	return out, nil
}

type bulkInserter interface {
	BulkInsert(ctx context.Context, diagnoses []*models.Diagnosis) (*models.BulkInsertResult, error)
}

// BulkInsert stores a batch, in one transaction when the repository supports it.
func (s *Store) BulkInsert(ctx context.Context, diagnoses []*models.Diagnosis) (*models.BulkInsertResult, error) {
	if bulk, ok := s.repo.(bulkInserter); ok {
		result, err := bulk.BulkInsert(ctx, diagnoses)
		if err != nil {
			return nil, err
		}
		if result.FailedCount == 0 {
			for _, d := range diagnoses {
				s.cache.Set(d)
			}
		}
		return result, nil
	}

	result := &models.BulkInsertResult{Errors: []string{}}
	for _, d := range diagnoses {
		if err := s.Save(ctx, d); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("diagnosis %s: %v", d.ID, err))
			continue
		}
		result.InsertedCount++
	}
	return result, nil
}
