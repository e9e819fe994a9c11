package quiz

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Title        string        `json:"title"`
	Question     string        `json:"question"`
	Code         *string       `json:"code"`
	Explanation  string        `json:"explanation"`
	CategoryID   string        `json:"categoryId"`
	DifficultyID string        `json:"difficultyId"`
	Inactive     bool          `json:"inactive"`
	Options      []OptionInput `json:"options"`
}

type CategoryInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

type DifficultyInput struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Points int     `json:"points"`
	Color  *string `json:"color"`
	Order  int     `json:"order"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateQuestion validates and stores a question with its options. Option
// order follows the input position, starting at 1.
func (s *Service) CreateQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Question = strings.TrimSpace(in.Question)
	in.Explanation = strings.TrimSpace(in.Explanation)
	switch {
	case in.Title == "":
		return Question{}, validationf("title is required")
	case in.Question == "":
		return Question{}, validationf("question is required")
	case in.Explanation == "":
		return Question{}, validationf("explanation is required")
	case len(in.Options) < 2:
		return Question{}, validationf("at least two options are required")
	}

	correct := 0
	opts := make([]Option, 0, len(in.Options))
	for i, o := range in.Options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			return Question{}, validationf("option %d has no text", i+1)
		}
		if o.IsCorrect {
			correct++
		}
		opts = append(opts, Option{Text: text, IsCorrect: o.IsCorrect, Order: i + 1})
	}
	if correct == 0 {
		return Question{}, validationf("at least one option must be correct")
	}

	if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
		return Question{}, unknownRef(err, "categoryId")
	}
	if _, err := s.store.GetDifficulty(ctx, in.DifficultyID); err != nil {
		return Question{}, unknownRef(err, "difficultyId")
	}

	created, err := s.store.CreateQuestion(ctx, Question{
		Title:        in.Title,
		Question:     in.Question,
		Code:         in.Code,
		Explanation:  in.Explanation,
		IsActive:     !in.Inactive,
		CategoryID:   in.CategoryID,
		DifficultyID: in.DifficultyID,
		Options:      opts,
	})
	if err != nil {
		return Question{}, err
	}
	return s.store.GetQuestion(ctx, created.ID)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Name == "" {
		return Category{}, validationf("name is required")
	}
	if !slugPattern.MatchString(in.Slug) {
		return Category{}, validationf("slug must be lowercase words joined by hyphens")
	}
	if _, err := s.store.GetCategoryBySlug(ctx, in.Slug); err == nil {
		return Category{}, validationf("slug %q already exists", in.Slug)
	} else if !errors.Is(err, ErrNotFound) {
		return Category{}, err
	}

	c, err := s.store.CreateCategory(ctx, Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
		IsActive:    true,
	})
	if err != nil {
		return Category{}, err
	}
	s.forget(ctx, cacheKeyCategories)
	return c, nil
}

func (s *Service) CreateDifficulty(ctx context.Context, in DifficultyInput) (Difficulty, error) {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	in.Label = strings.TrimSpace(in.Label)
	if in.Name == "" || in.Label == "" {
		return Difficulty{}, validationf("name and label are required")
	}
	if in.Points == 0 {
		in.Points = 1
	}
	if in.Points < 0 || in.Order < 0 {
		return Difficulty{}, validationf("points and order must not be negative")
	}
	if _, err := s.store.GetDifficultyByName(ctx, in.Name); err == nil {
		return Difficulty{}, validationf("difficulty %q already exists", in.Name)
	} else if !errors.Is(err, ErrNotFound) {
		return Difficulty{}, err
	}

	d, err := s.store.CreateDifficulty(ctx, Difficulty{
		Name:   in.Name,
		Label:  in.Label,
		Points: in.Points,
		Color:  in.Color,
		Order:  in.Order,
	})
	if err != nil {
		return Difficulty{}, err
	}
	s.forget(ctx, cacheKeyDifficulties)
	return d, nil
}

// unknownRef turns a missing referenced row into a validation error.
func unknownRef(err error, field string) error {
	if errors.Is(err, ErrNotFound) {
		return validationf("unknown %s", field)
	}
	return err
}
