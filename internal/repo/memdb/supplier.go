package memdb

import (
	"context"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

func (s *Store) GetSupplierById(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &supplier, nil
}
