package course

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,price,is_published,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, price=EXCLUDED.price, is_published=EXCLUDED.is_published`,
		c.ID, c.Title, c.Price, c.IsPublished, c.CreatedBy, c.CreatedAt)
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id,title,price,is_published,created_by,created_at FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Title, &c.Price, &c.IsPublished, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, apperr.NotFound("course not found")
		}
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) PutLesson(ctx context.Context, l Lesson) error {
	sheet := ""
	if l.DsaSheet != nil {
		buf, err := json.Marshal(l.DsaSheet)
		if err != nil {
			return err
		}
		sheet = string(buf)
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO lessons (id,course_id,title,type,position,is_published,is_preview,dsa_sheet_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, type=EXCLUDED.type, position=EXCLUDED.position,
			is_published=EXCLUDED.is_published, is_preview=EXCLUDED.is_preview, dsa_sheet_json=EXCLUDED.dsa_sheet_json`,
		l.ID, l.CourseID, l.Title, l.Type, l.Order, l.IsPublished, l.IsPreview, sheet, l.CreatedAt)
	return err
}

const lessonCols = `id,course_id,title,type,position,is_published,is_preview,dsa_sheet_json,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (Lesson, error) {
	var l Lesson
	var sheet string
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Type, &l.Order, &l.IsPublished, &l.IsPreview, &sheet, &l.CreatedAt); err != nil {
		return Lesson{}, err
	}
	if sheet != "" {
		l.DsaSheet = &DsaSheet{}
		if err := json.Unmarshal([]byte(sheet), l.DsaSheet); err != nil {
			return Lesson{}, err
		}
	}
	return l, nil
}

func (s *SQLStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	l, err := scanLesson(s.db.QueryRowContext(ctx, `SELECT `+lessonCols+` FROM lessons WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, apperr.NotFound("lesson not found")
		}
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) ListLessons(ctx context.Context, courseID string, publishedOnly bool) ([]Lesson, error) {
	q := `SELECT ` + lessonCols + ` FROM lessons WHERE course_id=$1`
	if publishedOnly {
		q += ` AND is_published=$2`
	}
	q += ` ORDER BY position, created_at, id`

	args := []any{courseID}
	if publishedOnly {
		args = append(args, true)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lesson, 0, 16)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListCourses(ctx context.Context, f ListFilter) ([]Course, error) {
	q := `SELECT id,title,price,is_published,created_by,created_at FROM courses WHERE 1=1`
	var args []any
	if f.PublishedOnly {
		args = append(args, true)
		q += ` AND is_published=$` + strconv.Itoa(len(args))
	}
	if f.Query != "" {
		args = append(args, strings.ToLower(f.Query))
		q += ` AND LOWER(title) LIKE '%' || $` + strconv.Itoa(len(args)) + ` || '%'`
	}
	args = append(args, f.Limit, f.Offset)
	q += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Course, 0, f.Limit)
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Price, &c.IsPublished, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
