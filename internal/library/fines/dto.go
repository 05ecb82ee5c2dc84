package fines

import (
	"time"

	"github.com/shopspring/decimal"
)

// FineResponse is one row of the fines listing, joined through the
// loan to the member and book for display.
type FineResponse struct {
	FineID     int64           `json:"id"`
	LoanID     int64           `json:"loan_id"`
	MemberName string          `json:"member_name"`
	BookTitle  string          `json:"book_title"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	CreatedAt  time.Time       `json:"created_at"`
}
