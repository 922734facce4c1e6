package quiz

import "context"

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error) // full quiz, answer keys included
	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)

	CountAttempts(ctx context.Context, userID, quizID string) (int, error)
	InsertAttempt(ctx context.Context, a Attempt) error
	ListAttempts(ctx context.Context, userID, quizID string) ([]Attempt, error)
}
