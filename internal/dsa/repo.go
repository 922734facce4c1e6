package dsa

import "context"

type Store interface {
	// Get returns NotFound when the user has no progress on the lesson yet.
	Get(ctx context.Context, userID, lessonID string) (Progress, error)
	Put(ctx context.Context, p Progress) error
}
