package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,course_id,lesson_id,title,questions_json,passing_score,max_attempts,time_limit_sec,required_for_certificate,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET lesson_id=EXCLUDED.lesson_id, title=EXCLUDED.title, questions_json=EXCLUDED.questions_json,
			passing_score=EXCLUDED.passing_score, max_attempts=EXCLUDED.max_attempts, time_limit_sec=EXCLUDED.time_limit_sec,
			required_for_certificate=EXCLUDED.required_for_certificate`,
		q.ID, q.CourseID, q.LessonID, q.Title, string(qj), q.PassingScore, q.Attempts, q.TimeLimitSec, q.IsRequiredForCertificate, q.CreatedAt)
	return err
}

const quizCols = `id,course_id,lesson_id,title,questions_json,passing_score,max_attempts,time_limit_sec,required_for_certificate,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.CourseID, &q.LessonID, &q.Title, &qjson, &q.PassingScore, &q.Attempts,
		&q.TimeLimitSec, &q.IsRequiredForCertificate, &q.CreatedAt); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := scanQuiz(s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, apperr.NotFound("quiz not found")
		}
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE course_id=$1 ORDER BY created_at, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Quiz, 0, 8)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountAttempts(ctx context.Context, userID, quizID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_attempts WHERE user_id=$1 AND quiz_id=$2`, userID, quizID).Scan(&n)
	return n, err
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts
		(id,quiz_id,user_id,attempt_number,answers_json,results_json,score,max_score,percentage,passed,time_spent_sec,started_at,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.QuizID, a.UserID, a.AttemptNumber, string(aj), string(rj), a.Score, a.MaxScore, a.Percentage, a.Passed,
		a.TimeSpentSec, a.StartedAt, a.SubmittedAt)
	return err
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,user_id,attempt_number,answers_json,results_json,score,max_score,
			percentage,passed,time_spent_sec,started_at,submitted_at
		FROM quiz_attempts WHERE user_id=$1 AND quiz_id=$2 ORDER BY attempt_number`, userID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var aj, rj string
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.AttemptNumber, &aj, &rj, &a.Score, &a.MaxScore,
			&a.Percentage, &a.Passed, &a.TimeSpentSec, &a.StartedAt, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rj), &a.Results); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
