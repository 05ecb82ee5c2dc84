package books

import (
	"context"
	"database/sql"

	"biblioteca-backend/internal/platform/apierr"
	"biblioteca-backend/internal/platform/db"
)

// Book status values. A damaged return does not get its own status;
// the book goes straight back to available.
const (
	StatusAvailable = "available"
	StatusLoaned    = "loaned"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, in CreateBookRequest) (int64, error) {
	const q = `
	INSERT INTO books (title, author, isbn, status)
	VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, in.Title, in.Author, in.ISBN, StatusAvailable)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*BookResponse, error) {
	const q = `SELECT id, title, author, isbn, status FROM books WHERE id = ?`
	var b BookResponse
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context) ([]BookResponse, error) {
	const q = `SELECT id, title, author, isbn, status FROM books ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookResponse, 0, 16)
	for rows.Next() {
		var b BookResponse
		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Transactional helpers ----
//
// Only the loans workflow may flip a book's status, and it must do so
// inside its own transaction, so these take a db.DBTX instead of
// hanging off Store.

// LockRowTx locks the book row and returns its current status.
func LockRowTx(ctx context.Context, tx db.DBTX, bookID int64) (string, error) {
	const q = `SELECT status FROM books WHERE id = ? FOR UPDATE`
	var status string
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return "", apierr.ErrNotFound("book not found")
		}
		return "", err
	}
	return status, nil
}

// MarkLoanedTx transitions available -> loaned. The status guard in the
// WHERE clause means a concurrent loan that won the row lock first
// leaves nothing for us to update.
func MarkLoanedTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	const q = `UPDATE books SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, StatusLoaned, bookID, StatusAvailable)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return apierr.ErrConflict("book unavailable")
	}
	return nil
}

// MarkAvailableTx transitions the book back to available on return.
// Zero rows affected is tolerated: a loan whose book row is gone still
// has to close (the caller logs it).
func MarkAvailableTx(ctx context.Context, tx db.DBTX, bookID int64) (bool, error) {
	const q = `UPDATE books SET status = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, StatusAvailable, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}
