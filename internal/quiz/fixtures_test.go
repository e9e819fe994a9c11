package quiz

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mind-engage/jsquiz/internal/db"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLStore(conn, db.DriverSQLite)
}

// catalog is a small seeded question bank: two categories, two difficulties
// and three questions whose first option is the correct one.
type catalog struct {
	basics, async Category
	easy, hard    Difficulty
	questions     []Question
}

func seedCatalog(t *testing.T, s *SQLStore) catalog {
	t.Helper()
	ctx := context.Background()
	var c catalog
	var err error
	if c.basics, err = s.CreateCategory(ctx, Category{Name: "Basics", Slug: "basics", IsActive: true}); err != nil {
		t.Fatalf("category: %v", err)
	}
	if c.async, err = s.CreateCategory(ctx, Category{Name: "Async", Slug: "async", IsActive: true}); err != nil {
		t.Fatalf("category: %v", err)
	}
	if c.easy, err = s.CreateDifficulty(ctx, Difficulty{Name: "easy", Label: "Easy", Points: 1, Order: 1}); err != nil {
		t.Fatalf("difficulty: %v", err)
	}
	if c.hard, err = s.CreateDifficulty(ctx, Difficulty{Name: "hard", Label: "Hard", Points: 3, Order: 3}); err != nil {
		t.Fatalf("difficulty: %v", err)
	}

	bank := []struct {
		title      string
		category   Category
		difficulty Difficulty
	}{
		{"typeof null", c.basics, c.easy},
		{"var hoisting", c.basics, c.hard},
		{"microtasks", c.async, c.hard},
	}
	for _, sp := range bank {
		q, err := s.CreateQuestion(ctx, Question{
			Title:        sp.title,
			Question:     "What does this print?",
			Explanation:  "Because of " + sp.title + ".",
			IsActive:     true,
			CategoryID:   sp.category.ID,
			DifficultyID: sp.difficulty.ID,
			Options: []Option{
				{Text: "right", IsCorrect: true, Order: 1},
				{Text: "wrong", Order: 2},
				{Text: "also wrong", Order: 3},
			},
		})
		if err != nil {
			t.Fatalf("question %s: %v", sp.title, err)
		}
		full, err := s.GetQuestion(ctx, q.ID)
		if err != nil {
			t.Fatalf("reload question: %v", err)
		}
		c.questions = append(c.questions, full)
	}
	return c
}

func correctID(q Question) string { return q.Options[0].ID }
func wrongID(q Question) string   { return q.Options[1].ID }

func intPtr(v int) *int { return &v }
