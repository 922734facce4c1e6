package enrollment

import "context"

type Store interface {
	Enroll(ctx context.Context, e Enrollment) (Enrollment, error)
	Get(ctx context.Context, userID, courseID string) (Enrollment, error)
	SetProgress(ctx context.Context, userID, courseID string, progress float64) error
	MarkLessonComplete(ctx context.Context, userID, courseID, lessonID string) error
	CompletedLessonIDs(ctx context.Context, userID, courseID string) ([]string, error)
}
