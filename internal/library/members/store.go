package members

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, in CreateMemberRequest) (int64, error) {
	const q = `INSERT INTO members (name, member_number, phone) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, in.Name, in.MemberNumber, nullStrOrNil(in.Phone))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*MemberResponse, error) {
	const q = `SELECT id, name, member_number, phone FROM members WHERE id = ?`
	var (
		m     MemberResponse
		phone sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&m.MemberID, &m.Name, &m.MemberNumber, &phone); err != nil {
		return nil, err
	}
	if phone.Valid {
		m.Phone = &phone.String
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context) ([]MemberResponse, error) {
	const q = `SELECT id, name, member_number, phone FROM members ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MemberResponse, 0, 16)
	for rows.Next() {
		var (
			m     MemberResponse
			phone sql.NullString
		)
		if err := rows.Scan(&m.MemberID, &m.Name, &m.MemberNumber, &phone); err != nil {
			return nil, err
		}
		if phone.Valid {
			v := phone.String
			m.Phone = &v
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullStrOrNil(p *string) any {
	if p != nil && *p != "" {
		return *p
	}
	return nil
}
