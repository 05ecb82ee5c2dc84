package members

import (
	"context"
	"database/sql"
	"strings"

	"biblioteca-backend/internal/platform/apierr"
)

type memberStore interface {
	Insert(ctx context.Context, in CreateMemberRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*MemberResponse, error)
	List(ctx context.Context) ([]MemberResponse, error)
}

type Service struct {
	store memberStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// RegisterMember creates a member record. Members carry no workflow
// state and are immutable after registration.
func (s *Service) RegisterMember(ctx context.Context, in CreateMemberRequest) (MemberResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.MemberNumber) == "" {
		return MemberResponse{}, apierr.ErrInvalid("name and member_number are required")
	}

	id, err := s.store.Insert(ctx, in)
	if err != nil {
		return MemberResponse{}, err
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return MemberResponse{}, err
	}
	return *out, nil
}

func (s *Service) ListMembers(ctx context.Context) ([]MemberResponse, error) {
	return s.store.List(ctx)
}
