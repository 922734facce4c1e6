package dsa

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, userID, lessonID string) (Progress, error) {
	var (
		p  Progress
		cj string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id,user_id,lesson_id,course_id,completed_json,total_problems,completion_percentage,updated_at
		FROM dsa_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID).
		Scan(&p.ID, &p.UserID, &p.LessonID, &p.CourseID, &cj, &p.TotalProblems, &p.CompletionPercentage, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Progress{}, apperr.NotFound("no progress recorded")
		}
		return Progress{}, err
	}
	if err := json.Unmarshal([]byte(cj), &p.Completed); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// Put upserts on (user_id, lesson_id); the last writer wins.
func (s *SQLStore) Put(ctx context.Context, p Progress) error {
	cj, err := json.Marshal(p.Completed)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO dsa_progress
		(id,user_id,lesson_id,course_id,completed_json,total_problems,completion_percentage,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
		  completed_json=excluded.completed_json,
		  total_problems=excluded.total_problems,
		  completion_percentage=excluded.completion_percentage,
		  updated_at=excluded.updated_at`,
		p.ID, p.UserID, p.LessonID, p.CourseID, string(cj), p.TotalProblems, p.CompletionPercentage, p.UpdatedAt)
	return err
}
