package fines

import (
	"context"
	"database/sql"
)

type fineStore interface {
	List(ctx context.Context) ([]FineResponse, error)
}

type Service struct {
	store fineStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// ListFines returns every fine ever issued. Fines are immutable, so
// there is nothing else to do with them here; issuing one happens in
// the loans return workflow.
func (s *Service) ListFines(ctx context.Context) ([]FineResponse, error) {
	return s.store.List(ctx)
}
