package certificate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Insert(ctx context.Context, c Certificate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates (id,user_id,course_id,number,issued_at,is_valid)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.UserID, c.CourseID, c.Number, c.IssuedAt, c.IsValid)
	return err
}

const certCols = `id,user_id,course_id,number,issued_at,is_valid,revoked_at`

func (s *SQLStore) getOne(ctx context.Context, where string, args ...any) (Certificate, error) {
	var c Certificate
	var revoked sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT `+certCols+` FROM certificates WHERE `+where, args...).
		Scan(&c.ID, &c.UserID, &c.CourseID, &c.Number, &c.IssuedAt, &c.IsValid, &revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, apperr.NotFound("certificate not found")
		}
		return Certificate{}, err
	}
	if revoked.Valid {
		v := revoked.Int64
		c.RevokedAt = &v
	}
	return c, nil
}

func (s *SQLStore) Get(ctx context.Context, userID, courseID string) (Certificate, error) {
	return s.getOne(ctx, `user_id=$1 AND course_id=$2`, userID, courseID)
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Certificate, error) {
	return s.getOne(ctx, `id=$1`, id)
}

func (s *SQLStore) GetByNumber(ctx context.Context, number string) (Certificate, error) {
	return s.getOne(ctx, `number=$1`, number)
}

func (s *SQLStore) Revoke(ctx context.Context, id string, at int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE certificates SET is_valid=$1, revoked_at=$2 WHERE id=$3`, false, at, id)
	return err
}
