package loans

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Loan is one row of the loans table. ReturnDate NULL means the loan
// is open and its book is out.
type Loan struct {
	LoanID     int64
	MemberID   int64
	BookID     int64
	StartDate  time.Time
	ReturnDate sql.NullTime
}

// FineSpec describes the fine to record while closing a loan. A nil
// FineSpec means the return carries no fine.
type FineSpec struct {
	Amount decimal.Decimal
	Reason string
}

// dateLayout is how dates cross the API (DATE columns underneath).
const dateLayout = "2006-01-02"
