package books

import (
	"context"
	"database/sql"
	"strings"

	"biblioteca-backend/internal/platform/apierr"
)

type bookStore interface {
	Insert(ctx context.Context, in CreateBookRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*BookResponse, error)
	List(ctx context.Context) ([]BookResponse, error)
}

type Service struct {
	store bookStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// CreateBook registers a new title. No duplicate check, not even on
// ISBN; the catalog intentionally allows the same book twice.
func (s *Service) CreateBook(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return BookResponse{}, apierr.ErrInvalid("title and author are required")
	}

	id, err := s.store.Insert(ctx, in)
	if err != nil {
		return BookResponse{}, err
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (BookResponse, error) {
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return BookResponse{}, apierr.ErrNotFound("book not found")
		}
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookResponse, error) {
	return s.store.List(ctx)
}
