package loans

import "github.com/shopspring/decimal"

// ===== Requests =====

type CreateLoanRequest struct {
	MemberID int64 `json:"member_id" binding:"required"`
	BookID   int64 `json:"book_id" binding:"required"`
	// "2006-01-02" (DATE)
	StartDate string `json:"start_date" binding:"required"`
}

type CompleteReturnRequest struct {
	// "2006-01-02" (DATE)
	ReturnDate string          `json:"return_date" binding:"required"`
	Damaged    bool            `json:"damaged"`
	FineAmount decimal.Decimal `json:"fine_amount"`
	Reason     *string         `json:"reason,omitempty"`
}

// ===== Responses =====

type LoanResponse struct {
	LoanID     int64   `json:"id"`
	MemberID   int64   `json:"member_id"`
	BookID     int64   `json:"book_id"`
	StartDate  string  `json:"start_date"`
	ReturnDate *string `json:"return_date,omitempty"`
}

// ActiveLoanResponse carries the display fields the front desk needs
// next to each open loan.
type ActiveLoanResponse struct {
	LoanID       int64  `json:"id"`
	MemberName   string `json:"member_name"`
	MemberNumber string `json:"member_number"`
	BookTitle    string `json:"book_title"`
	BookAuthor   string `json:"book_author"`
	StartDate    string `json:"start_date"`
}

func buildLoanResponse(m *Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:    m.LoanID,
		MemberID:  m.MemberID,
		BookID:    m.BookID,
		StartDate: m.StartDate.Format(dateLayout),
	}
	if m.ReturnDate.Valid {
		v := m.ReturnDate.Time.Format(dateLayout)
		resp.ReturnDate = &v
	}
	return resp
}
