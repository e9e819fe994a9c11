package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultQuestionsPerSession = 10
	MaxQuestionCount           = 50
	DefaultDashboardLimit      = 20
	MaxDashboardLimit          = 100

	cacheKeyCategories   = "catalog:categories"
	cacheKeyDifficulties = "catalog:difficulties"
)

// Cache stores JSON-encodable values. Failures are logged and bypassed.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	store               Store
	cache               Cache
	cacheTTL            time.Duration
	questionsPerSession int
	now                 func() time.Time
}

type ServiceOption func(*Service)

func WithCache(c Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) { s.cache, s.cacheTTL = c, ttl }
}

func WithQuestionsPerSession(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.questionsPerSession = n
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:               store,
		questionsPerSession: DefaultQuestionsPerSession,
		now:                 time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartSession creates an anonymous user and a fresh session for it.
func (s *Service) StartSession(ctx context.Context, meta RequestMeta) (Session, error) {
	now := s.now().UTC()
	name := fmt.Sprintf("anon_%d", now.UnixMilli())
	u, err := s.store.CreateUser(ctx, User{IsAnonymous: true, DisplayName: &name})
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	sess, err := s.store.CreateSession(ctx, Session{
		SessionToken:   uuid.NewString(),
		StartedAt:      now,
		TotalQuestions: s.questionsPerSession,
		UserID:         u.ID,
		UserAgent:      meta.UserAgent,
		IPAddress:      meta.IPAddress,
		DeviceType:     DeviceTypeFromUserAgent(meta.UserAgent),
	})
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// FetchQuestions returns count random active questions with relations. Callers
// must send them through Question.Public before they leave the process.
func (s *Service) FetchQuestions(ctx context.Context, count int, categoryID string) ([]Question, error) {
	if count < 1 || count > MaxQuestionCount {
		return nil, validationf("count must be between 1 and %d", MaxQuestionCount)
	}
	return s.store.RandomQuestions(ctx, count, strings.TrimSpace(categoryID))
}

func (s *Service) Question(ctx context.Context, id string) (Question, error) {
	if strings.TrimSpace(id) == "" {
		return Question{}, validationf("question id is required")
	}
	return s.store.GetQuestion(ctx, id)
}

type AnswerInput struct {
	SessionToken string
	QuestionID   string
	OptionID     string
	TimeSpent    int // seconds; <= 0 means not measured
}

type AnswerResult struct {
	IsCorrect      bool    `json:"isCorrect"`
	CorrectOption  *Option `json:"correctOption"`
	Explanation    string  `json:"explanation"`
	CurrentScore   float64 `json:"currentScore"`
	CorrectAnswers int     `json:"correctAnswers"`
}

// SubmitAnswer records one answer. CurrentScore is the score persisted for the
// session after this answer, recomputed from the answer log.
func (s *Service) SubmitAnswer(ctx context.Context, in AnswerInput) (AnswerResult, error) {
	in.SessionToken = strings.TrimSpace(in.SessionToken)
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.OptionID = strings.TrimSpace(in.OptionID)
	if in.SessionToken == "" || in.QuestionID == "" || in.OptionID == "" {
		return AnswerResult{}, validationf("sessionToken, questionId and optionId are required")
	}

	sess, err := s.store.GetSessionByToken(ctx, in.SessionToken)
	if err != nil {
		return AnswerResult{}, err
	}
	q, err := s.store.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return AnswerResult{}, err
	}
	chosen, ok := q.option(in.OptionID)
	if !ok {
		return AnswerResult{}, validationf("invalid option")
	}

	var spent *int
	if in.TimeSpent > 0 {
		v := in.TimeSpent
		spent = &v
	}
	updated, err := s.store.RecordAnswer(ctx, Answer{
		IsCorrect:  chosen.IsCorrect,
		TimeSpent:  spent,
		AnsweredAt: s.now().UTC(),
		SessionID:  sess.ID,
		QuestionID: q.ID,
		OptionID:   chosen.ID,
		UserID:     sess.UserID,
	})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("record answer: %w", err)
	}

	return AnswerResult{
		IsCorrect:      chosen.IsCorrect,
		CorrectOption:  q.CorrectOption(),
		Explanation:    q.Explanation,
		CurrentScore:   updated.Score,
		CorrectAnswers: updated.CorrectAnswers,
	}, nil
}

// CompleteSession finalizes the session and returns it with its joined answers.
func (s *Service) CompleteSession(ctx context.Context, token string, timeSpent int) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, validationf("session token required")
	}
	sess, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		return Session{}, err
	}
	var spent *int
	if timeSpent > 0 {
		spent = &timeSpent
	}
	return s.store.CompleteSession(ctx, sess.ID, s.now().UTC(), spent)
}

func (s *Service) ComputeResults(ctx context.Context, token string) (Results, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Results{}, validationf("session token required")
	}
	sess, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		return Results{}, err
	}
	return BuildResults(sess), nil
}

// Dashboard lists completed sessions, newest first.
func (s *Service) Dashboard(ctx context.Context, q DashboardQuery) ([]Session, error) {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultDashboardLimit
	case q.Limit > MaxDashboardLimit:
		q.Limit = MaxDashboardLimit
	}
	return s.store.ListCompletedSessions(ctx, q)
}

func (s *Service) User(ctx context.Context, id string) (User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) QuestionStats(ctx context.Context, questionID string) (QuestionStats, error) {
	if strings.TrimSpace(questionID) == "" {
		return QuestionStats{}, validationf("question id is required")
	}
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return QuestionStats{}, err
	}
	return s.store.GetQuestionStats(ctx, questionID)
}

// ---- catalog ----

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if s.cached(ctx, cacheKeyCategories, &out) {
		return out, nil
	}
	out, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, cacheKeyCategories, out)
	return out, nil
}

func (s *Service) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return s.store.GetCategoryBySlug(ctx, strings.TrimSpace(slug))
}

func (s *Service) Difficulties(ctx context.Context) ([]Difficulty, error) {
	var out []Difficulty
	if s.cached(ctx, cacheKeyDifficulties, &out) {
		return out, nil
	}
	out, err := s.store.ListDifficulties(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, cacheKeyDifficulties, out)
	return out, nil
}

func (s *Service) DifficultyByName(ctx context.Context, name string) (Difficulty, error) {
	return s.store.GetDifficultyByName(ctx, strings.TrimSpace(name))
}

func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("cache get %s: %v", key, err)
		return false
	}
	return ok
}

func (s *Service) remember(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (s *Service) forget(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("cache delete %v: %v", keys, err)
	}
}

// IsClientError reports whether err should be shown to the caller as is.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}
