package loans

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"biblioteca-backend/internal/platform/apierr"
)

type loanStore interface {
	ExecCreateLoan(ctx context.Context, m *Loan) error
	ExecCompleteReturn(ctx context.Context, loanID int64, returnDate time.Time, fine *FineSpec) error
	GetByID(ctx context.Context, loanID int64) (*Loan, error)
	ListActive(ctx context.Context) ([]ActiveLoanResponse, error)
}

type Service struct {
	store loanStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// CreateLoan lends a book to a member. The store applies the
// availability check and the loan insert as one unit, so two lends
// racing for the same book cannot both win.
func (s *Service) CreateLoan(ctx context.Context, req CreateLoanRequest) (LoanResponse, error) {
	if req.MemberID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("member_id must be > 0")
	}
	if req.BookID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("book_id must be > 0")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LoanResponse{}, apierr.ErrInvalid("invalid start_date format, expected YYYY-MM-DD")
	}

	m := &Loan{
		MemberID:  req.MemberID,
		BookID:    req.BookID,
		StartDate: start,
	}
	if err := s.store.ExecCreateLoan(ctx, m); err != nil {
		return LoanResponse{}, err
	}
	return buildLoanResponse(m), nil
}

// CompleteReturn closes a loan. A fine is recorded only when the book
// came back damaged AND the amount is positive; a damaged return with
// a zero amount is just a return.
func (s *Service) CompleteReturn(ctx context.Context, loanID int64, req CompleteReturnRequest) error {
	if loanID <= 0 {
		return apierr.ErrInvalid("loan_id must be > 0")
	}
	returnDate, err := time.Parse(dateLayout, req.ReturnDate)
	if err != nil {
		return apierr.ErrInvalid("invalid return_date format, expected YYYY-MM-DD")
	}
	if req.FineAmount.IsNegative() {
		return apierr.ErrInvalid("fine_amount must not be negative")
	}

	var fine *FineSpec
	if req.Damaged && req.FineAmount.IsPositive() {
		fine = &FineSpec{Amount: req.FineAmount}
		if req.Reason != nil {
			fine.Reason = strings.TrimSpace(*req.Reason)
		}
	}

	return s.store.ExecCompleteReturn(ctx, loanID, returnDate, fine)
}

func (s *Service) GetLoan(ctx context.Context, loanID int64) (LoanResponse, error) {
	if loanID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("loan_id must be > 0")
	}
	m, err := s.store.GetByID(ctx, loanID)
	if err != nil {
		return LoanResponse{}, err
	}
	return buildLoanResponse(m), nil
}

// ListActiveLoans returns every loan whose book is still out.
func (s *Service) ListActiveLoans(ctx context.Context) ([]ActiveLoanResponse, error) {
	return s.store.ListActive(ctx)
}
