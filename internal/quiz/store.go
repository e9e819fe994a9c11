package quiz

import (
	"context"
	"time"
)

type DashboardQuery struct {
	UserID string // optional: restrict to one user
	Limit  int
}

// Store is the data access layer. Lookups of unknown rows return an error
// matching ErrNotFound.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error) // active only
	GetCategory(ctx context.Context, id string) (Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	ListDifficulties(ctx context.Context) ([]Difficulty, error) // by order
	GetDifficulty(ctx context.Context, id string) (Difficulty, error)
	GetDifficultyByName(ctx context.Context, name string) (Difficulty, error)
	CreateDifficulty(ctx context.Context, d Difficulty) (Difficulty, error)

	GetQuestion(ctx context.Context, id string) (Question, error)
	RandomQuestions(ctx context.Context, n int, categoryID string) ([]Question, error)
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestionStats(ctx context.Context, questionID string) (QuestionStats, error)

	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)

	CreateSession(ctx context.Context, s Session) (Session, error)
	GetSessionByID(ctx context.Context, id string) (Session, error)       // with answers
	GetSessionByToken(ctx context.Context, token string) (Session, error) // with answers

	// RecordAnswer writes the answer, folds it into the question stats and
	// recomputes the session score from the answer log, atomically.
	RecordAnswer(ctx context.Context, a Answer) (Session, error)
	// CompleteSession marks the session completed and rolls its score into the
	// owning user's counters. A session that is already completed is left as is.
	CompleteSession(ctx context.Context, sessionID string, completedAt time.Time, timeSpent *int) (Session, error)
	ListCompletedSessions(ctx context.Context, q DashboardQuery) ([]Session, error)
}
