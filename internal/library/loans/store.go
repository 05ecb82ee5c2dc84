package loans

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"biblioteca-backend/internal/library/books"
	"biblioteca-backend/internal/library/fines"
	"biblioteca-backend/internal/platform/apierr"
	"biblioteca-backend/internal/platform/db"
)

const mysqlErrFKConstraint = 1452

type Store struct{ db *sql.DB }

func NewStore(sqldb *sql.DB) *Store { return &Store{db: sqldb} }

// ---- Transactional methods ----

// ExecCreateLoan runs the whole lend flow in one transaction:
// lock the book row, reject unless available, flip it to loaned and
// insert the loan. Either all of it lands or none of it does, so a
// book can never be loaned without exactly one open loan behind it.
func (s *Store) ExecCreateLoan(ctx context.Context, m *Loan) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// 1. Lock the book row; concurrent lends serialize here.
		status, err := books.LockRowTx(ctx, tx, m.BookID)
		if err != nil {
			return err
		}
		if status != books.StatusAvailable {
			return apierr.ErrConflict("book unavailable")
		}

		// 2. available -> loaned, guarded on the prior status.
		if err := books.MarkLoanedTx(ctx, tx, m.BookID); err != nil {
			return err
		}

		// 3. Insert the open loan.
		const q = `
		INSERT INTO loans (member_id, book_id, start_date, return_date)
		VALUES (?, ?, ?, NULL)`
		res, err := tx.ExecContext(ctx, q, m.MemberID, m.BookID, m.StartDate)
		if err != nil {
			// The book was locked above, so an FK failure here can only
			// be the member.
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlErrFKConstraint {
				return apierr.ErrNotFound("member not found")
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		m.LoanID = id
		return nil
	})
}

// ExecCompleteReturn closes a loan in one transaction: set its return
// date, put the book back to available and, when fine is non-nil,
// record the fine. A loan that is already closed is rejected so a
// double return can never re-issue a fine.
func (s *Store) ExecCompleteReturn(ctx context.Context, loanID int64, returnDate time.Time, fine *FineSpec) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// 1. Lock the loan row and check its state.
		const lockQ = `
		SELECT id, member_id, book_id, start_date, return_date
		FROM loans WHERE id = ? FOR UPDATE`
		var l Loan
		if err := tx.QueryRowContext(ctx, lockQ, loanID).Scan(
			&l.LoanID, &l.MemberID, &l.BookID, &l.StartDate, &l.ReturnDate,
		); err != nil {
			if err == sql.ErrNoRows {
				return apierr.ErrNotFound("loan not found")
			}
			return err
		}
		if l.ReturnDate.Valid {
			return apierr.ErrConflict("loan already closed")
		}
		if returnDate.Before(l.StartDate) {
			return apierr.ErrInvalid("return_date precedes start_date")
		}

		// 2. Close the loan.
		const closeQ = `UPDATE loans SET return_date = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, closeQ, returnDate, loanID); err != nil {
			return err
		}

		// 3. Put the book back. Best effort: if the book row is gone
		// the return still closes the loan.
		ok, err := books.MarkAvailableTx(ctx, tx, l.BookID)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("[WARN] loan %d closed but book %d was not updated", loanID, l.BookID)
		}

		// 4. Damage fine, inside the same boundary.
		if fine != nil {
			if _, err := fines.InsertTx(ctx, tx, loanID, fine.Amount, fine.Reason); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---- Queries ----

func (s *Store) GetByID(ctx context.Context, loanID int64) (*Loan, error) {
	const q = `
	SELECT id, member_id, book_id, start_date, return_date
	FROM loans WHERE id = ?`
	var m Loan
	err := s.db.QueryRowContext(ctx, q, loanID).Scan(
		&m.LoanID, &m.MemberID, &m.BookID, &m.StartDate, &m.ReturnDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierr.ErrNotFound("loan not found")
		}
		return nil, err
	}
	return &m, nil
}

// ListActive returns open loans joined with member and book display
// fields, oldest first.
func (s *Store) ListActive(ctx context.Context) ([]ActiveLoanResponse, error) {
	const q = `
	SELECT l.id, s.name, s.member_number, b.title, b.author, l.start_date
	FROM loans l
	JOIN members s ON s.id = l.member_id
	JOIN books b   ON b.id = l.book_id
	WHERE l.return_date IS NULL
	ORDER BY l.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ActiveLoanResponse, 0, 16)
	for rows.Next() {
		var (
			r     ActiveLoanResponse
			start time.Time
		)
		if err := rows.Scan(&r.LoanID, &r.MemberName, &r.MemberNumber, &r.BookTitle, &r.BookAuthor, &start); err != nil {
			return nil, err
		}
		r.StartDate = start.Format(dateLayout)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
