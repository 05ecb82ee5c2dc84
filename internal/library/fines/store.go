package fines

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"biblioteca-backend/internal/platform/db"
)

// DefaultReason is recorded when a damaged return carries no reason.
const DefaultReason = "damaged book"

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InsertTx records a fine against a loan. It takes a db.DBTX because
// its only caller is the return workflow in the loans package, which
// must keep the fine inside the same transaction as the loan closure.
func InsertTx(ctx context.Context, tx db.DBTX, loanID int64, amount decimal.Decimal, reason string) (int64, error) {
	if reason == "" {
		reason = DefaultReason
	}
	const q = `
	INSERT INTO fines (loan_id, amount, reason, created_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	res, err := tx.ExecContext(ctx, q, loanID, amount, reason)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) List(ctx context.Context) ([]FineResponse, error) {
	const q = `
	SELECT f.id, f.loan_id, s.name, b.title, f.amount, f.reason, f.created_at
	FROM fines f
	JOIN loans l   ON l.id = f.loan_id
	JOIN members s ON s.id = l.member_id
	JOIN books b   ON b.id = l.book_id
	ORDER BY f.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FineResponse, 0, 16)
	for rows.Next() {
		var f FineResponse
		if err := rows.Scan(&f.FineID, &f.LoanID, &f.MemberName, &f.BookTitle, &f.Amount, &f.Reason, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
