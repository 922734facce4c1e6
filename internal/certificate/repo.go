package certificate

import "context"

type Store interface {
	Insert(ctx context.Context, c Certificate) error
	Get(ctx context.Context, userID, courseID string) (Certificate, error)
	GetByID(ctx context.Context, id string) (Certificate, error)
	GetByNumber(ctx context.Context, number string) (Certificate, error)
	Revoke(ctx context.Context, id string, at int64) error
}
