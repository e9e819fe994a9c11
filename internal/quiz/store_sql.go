package quiz

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/jsquiz/internal/db"
	syncx "github.com/mind-engage/jsquiz/internal/sync"
)

// SQLStore implements Store on database/sql. Queries use $N placeholders,
// which both modernc sqlite and pgx accept.
type SQLStore struct {
	conn   *sql.DB
	driver db.Driver
	events *syncx.EventRepo
	now    func() time.Time
}

func NewSQLStore(conn *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{conn: conn, driver: driver, events: syncx.NewEventRepo(), now: time.Now}
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error { return s.conn.PingContext(ctx) }

const (
	categoryCols   = `c.id, c.name, c.description, c.slug, c.icon, c.color, c.is_active, c.created_at, c.updated_at`
	difficultyCols = `d.id, d.name, d.label, d.points, d.color, d.sort_order, d.created_at, d.updated_at`
	questionCols   = `q.id, q.title, q.question, q.code, q.explanation, q.is_active, q.category_id, q.difficulty_id, q.created_at, q.updated_at`
	optionCols     = `o.id, o.text, o.is_correct, o.sort_order, o.question_id`
	userCols       = `u.id, u.email, u.username, u.display_name, u.avatar, u.is_anonymous, u.total_sessions, u.total_score, u.best_score, u.streak, u.created_at, u.updated_at, u.last_active_at`
	sessionCols    = `s.id, s.session_token, s.started_at, s.completed_at, s.is_completed, s.total_questions, s.correct_answers, s.score, s.time_spent, s.user_id, s.user_agent, s.ip_address, s.device_type`
	answerCols     = `a.id, a.is_correct, a.time_spent, a.answered_at, a.session_id, a.question_id, a.option_id, a.user_id`

	questionFrom = ` FROM questions q
		JOIN categories c ON c.id = q.category_id
		JOIN difficulties d ON d.id = q.difficulty_id`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// ---- row adapters: dest() feeds Scan, value() converts stored columns ----

type categoryRow struct {
	c                Category
	created, updated int64
}

func (r *categoryRow) dest() []any {
	return []any{&r.c.ID, &r.c.Name, &r.c.Description, &r.c.Slug, &r.c.Icon, &r.c.Color, &r.c.IsActive, &r.created, &r.updated}
}

func (r *categoryRow) value() Category {
	c := r.c
	c.CreatedAt, c.UpdatedAt = fromMillis(r.created), fromMillis(r.updated)
	return c
}

type difficultyRow struct {
	d                Difficulty
	created, updated int64
}

func (r *difficultyRow) dest() []any {
	return []any{&r.d.ID, &r.d.Name, &r.d.Label, &r.d.Points, &r.d.Color, &r.d.Order, &r.created, &r.updated}
}

func (r *difficultyRow) value() Difficulty {
	d := r.d
	d.CreatedAt, d.UpdatedAt = fromMillis(r.created), fromMillis(r.updated)
	return d
}

type questionRow struct {
	q                Question
	created, updated int64
}

func (r *questionRow) dest() []any {
	return []any{&r.q.ID, &r.q.Title, &r.q.Question, &r.q.Code, &r.q.Explanation, &r.q.IsActive, &r.q.CategoryID, &r.q.DifficultyID, &r.created, &r.updated}
}

func (r *questionRow) value() Question {
	q := r.q
	q.CreatedAt, q.UpdatedAt = fromMillis(r.created), fromMillis(r.updated)
	return q
}

type optionRow struct{ o Option }

func (r *optionRow) dest() []any {
	return []any{&r.o.ID, &r.o.Text, &r.o.IsCorrect, &r.o.Order, &r.o.QuestionID}
}

type userRow struct {
	u                        User
	created, updated, active int64
}

func (r *userRow) dest() []any {
	return []any{&r.u.ID, &r.u.Email, &r.u.Username, &r.u.DisplayName, &r.u.Avatar, &r.u.IsAnonymous,
		&r.u.TotalSessions, &r.u.TotalScore, &r.u.BestScore, &r.u.Streak, &r.created, &r.updated, &r.active}
}

func (r *userRow) value() User {
	u := r.u
	u.CreatedAt, u.UpdatedAt, u.LastActiveAt = fromMillis(r.created), fromMillis(r.updated), fromMillis(r.active)
	return u
}

type sessionRow struct {
	s         Session
	started   int64
	completed *int64
	device    string
}

func (r *sessionRow) dest() []any {
	return []any{&r.s.ID, &r.s.SessionToken, &r.started, &r.completed, &r.s.IsCompleted, &r.s.TotalQuestions,
		&r.s.CorrectAnswers, &r.s.Score, &r.s.TimeSpent, &r.s.UserID, &r.s.UserAgent, &r.s.IPAddress, &r.device}
}

func (r *sessionRow) value() Session {
	s := r.s
	s.StartedAt = fromMillis(r.started)
	if r.completed != nil {
		t := fromMillis(*r.completed)
		s.CompletedAt = &t
	}
	s.DeviceType = DeviceType(r.device)
	return s
}

type answerRow struct {
	a        Answer
	answered int64
}

func (r *answerRow) dest() []any {
	return []any{&r.a.ID, &r.a.IsCorrect, &r.a.TimeSpent, &r.answered, &r.a.SessionID, &r.a.QuestionID, &r.a.OptionID, &r.a.UserID}
}

func (r *answerRow) value() Answer {
	a := r.a
	a.AnsweredAt = fromMillis(r.answered)
	return a
}

func concat(parts ...[]any) []any {
	var out []any
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// placeholders returns "$from,$from+1,..." for n arguments.
func placeholders(from, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(from + i))
	}
	return b.String()
}

func noRows(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(what)
	}
	return err
}
