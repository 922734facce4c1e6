package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Enroll creates the enrollment or reactivates a dropped one.
func (s *SQLStore) Enroll(ctx context.Context, e Enrollment) (Enrollment, error) {
	now := time.Now().Unix()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (id,user_id,course_id,status,progress,enrolled_at,updated_at)
		VALUES ($1,$2,$3,$4,0,$5,$6)
		ON CONFLICT (user_id, course_id) DO UPDATE SET status=EXCLUDED.status, updated_at=EXCLUDED.updated_at`,
		e.ID, e.UserID, e.CourseID, e.Status, now, now)
	if err != nil {
		return Enrollment{}, err
	}
	return s.Get(ctx, e.UserID, e.CourseID)
}

func (s *SQLStore) Get(ctx context.Context, userID, courseID string) (Enrollment, error) {
	var e Enrollment
	err := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,course_id,status,progress,enrolled_at,updated_at FROM enrollments WHERE user_id=$1 AND course_id=$2`,
		userID, courseID).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.Progress, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, apperr.NotFound("enrollment not found")
		}
		return Enrollment{}, err
	}
	return e, nil
}

func (s *SQLStore) SetProgress(ctx context.Context, userID, courseID string, progress float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE enrollments SET progress=$1, updated_at=$2 WHERE user_id=$3 AND course_id=$4`,
		progress, time.Now().Unix(), userID, courseID)
	return err
}

func (s *SQLStore) MarkLessonComplete(ctx context.Context, userID, courseID, lessonID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO lesson_completions (user_id,lesson_id,course_id,completed_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`,
		userID, lessonID, courseID, time.Now().Unix())
	return err
}

func (s *SQLStore) CompletedLessonIDs(ctx context.Context, userID, courseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lesson_id FROM lesson_completions WHERE user_id=$1 AND course_id=$2 ORDER BY completed_at, lesson_id`,
		userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
