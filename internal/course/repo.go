package course

import "context"

// ListFilter narrows ListCourses. Query matches titles case-insensitively.
type ListFilter struct {
	Query         string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, f ListFilter) ([]Course, error)
	PutLesson(ctx context.Context, l Lesson) error
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context, courseID string, publishedOnly bool) ([]Lesson, error)
}
