package quiz

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mind-engage/jsquiz/internal/db"
)

func (s *SQLStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+categoryCols+` FROM categories c WHERE c.is_active=$1 ORDER BY c.name`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var r categoryRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		out = append(out, r.value())
	}
	return out, rows.Err()
}

func (s *SQLStore) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var r categoryRow
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+categoryCols+` FROM categories c WHERE c.slug=$1`, slug).Scan(r.dest()...)
	if err != nil {
		return Category{}, noRows(err, "category")
	}
	return r.value(), nil
}

func (s *SQLStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO categories (id,name,description,slug,icon,color,is_active,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.Name, c.Description, c.Slug, c.Icon, c.Color, c.IsActive, millis(now), millis(now))
	if err != nil {
		return Category{}, err
	}
	c.CreatedAt, c.UpdatedAt = fromMillis(millis(now)), fromMillis(millis(now))
	return c, nil
}

func (s *SQLStore) ListDifficulties(ctx context.Context) ([]Difficulty, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+difficultyCols+` FROM difficulties d ORDER BY d.sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Difficulty{}
	for rows.Next() {
		var r difficultyRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		out = append(out, r.value())
	}
	return out, rows.Err()
}

func (s *SQLStore) GetDifficultyByName(ctx context.Context, name string) (Difficulty, error) {
	var r difficultyRow
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+difficultyCols+` FROM difficulties d WHERE d.name=$1`, name).Scan(r.dest()...)
	if err != nil {
		return Difficulty{}, noRows(err, "difficulty")
	}
	return r.value(), nil
}

func (s *SQLStore) GetDifficulty(ctx context.Context, id string) (Difficulty, error) {
	var r difficultyRow
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+difficultyCols+` FROM difficulties d WHERE d.id=$1`, id).Scan(r.dest()...)
	if err != nil {
		return Difficulty{}, noRows(err, "difficulty")
	}
	return r.value(), nil
}

func (s *SQLStore) GetCategory(ctx context.Context, id string) (Category, error) {
	var r categoryRow
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+categoryCols+` FROM categories c WHERE c.id=$1`, id).Scan(r.dest()...)
	if err != nil {
		return Category{}, noRows(err, "category")
	}
	return r.value(), nil
}

func (s *SQLStore) CreateDifficulty(ctx context.Context, d Difficulty) (Difficulty, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := millis(s.now())
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO difficulties (id,name,label,points,color,sort_order,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.Name, d.Label, d.Points, d.Color, d.Order, now, now)
	if err != nil {
		return Difficulty{}, err
	}
	d.CreatedAt, d.UpdatedAt = fromMillis(now), fromMillis(now)
	return d, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	var qr questionRow
	var cr categoryRow
	var dr difficultyRow
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+questionCols+`, `+categoryCols+`, `+difficultyCols+questionFrom+` WHERE q.id=$1`, id).
		Scan(concat(qr.dest(), cr.dest(), dr.dest())...)
	if err != nil {
		return Question{}, noRows(err, "question")
	}
	q := qr.value()
	c, d := cr.value(), dr.value()
	q.Category, q.Difficulty = &c, &d

	opts, err := s.loadOptions(ctx, s.conn, []string{q.ID})
	if err != nil {
		return Question{}, err
	}
	q.Options = opts[q.ID]
	return q, nil
}

// RandomQuestions samples n active questions with ORDER BY RANDOM(); there is
// no per-session exclusion and no category/difficulty balancing.
func (s *SQLStore) RandomQuestions(ctx context.Context, n int, categoryID string) ([]Question, error) {
	query := `SELECT ` + questionCols + `, ` + categoryCols + `, ` + difficultyCols + questionFrom + ` WHERE q.is_active=$1`
	args := []any{true}
	if categoryID != "" {
		query += ` AND q.category_id=$2`
		args = append(args, categoryID)
	}
	args = append(args, n)
	query += ` ORDER BY RANDOM() LIMIT ` + placeholders(len(args), 1)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	var ids []string
	for rows.Next() {
		var qr questionRow
		var cr categoryRow
		var dr difficultyRow
		if err := rows.Scan(concat(qr.dest(), cr.dest(), dr.dest())...); err != nil {
			return nil, err
		}
		q := qr.value()
		c, d := cr.value(), dr.value()
		q.Category, q.Difficulty = &c, &d
		out = append(out, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	opts, err := s.loadOptions(ctx, s.conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Options = opts[out[i].ID]
	}
	return out, nil
}

// loadOptions returns options keyed by question id, in display order.
func (s *SQLStore) loadOptions(ctx context.Context, q db.Execer, questionIDs []string) (map[string][]Option, error) {
	out := make(map[string][]Option, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+optionCols+` FROM options o WHERE o.question_id IN (`+placeholders(1, len(args))+`)
		 ORDER BY o.question_id, o.sort_order`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r optionRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		out[r.o.QuestionID] = append(out[r.o.QuestionID], r.o)
	}
	return out, rows.Err()
}

// CreateQuestion inserts the question and its options in one transaction.
func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := millis(s.now())
	err := db.WithTx(ctx, s.conn, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id,title,question,code,explanation,is_active,category_id,difficulty_id,created_at,updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			q.ID, q.Title, q.Question, q.Code, q.Explanation, q.IsActive, q.CategoryID, q.DifficultyID, now, now)
		if err != nil {
			return err
		}
		for i := range q.Options {
			o := &q.Options[i]
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			o.QuestionID = q.ID
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO options (id,text,is_correct,sort_order,question_id,created_at,updated_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				o.ID, o.Text, o.IsCorrect, o.Order, o.QuestionID, now, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Question{}, err
	}
	q.CreatedAt, q.UpdatedAt = fromMillis(now), fromMillis(now)
	return q, nil
}

func (s *SQLStore) GetQuestionStats(ctx context.Context, questionID string) (QuestionStats, error) {
	var st QuestionStats
	var updated int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, question_id, total_answers, correct_answers, success_rate, average_time, time_samples, last_updated
		 FROM question_stats WHERE question_id=$1`, questionID).
		Scan(&st.ID, &st.QuestionID, &st.TotalAnswers, &st.CorrectAnswers, &st.SuccessRate, &st.AverageTime, &st.TimeSamples, &updated)
	if err != nil {
		return QuestionStats{}, noRows(err, "question stats")
	}
	st.LastUpdated = fromMillis(updated)
	return st, nil
}

// upsertStats folds one answer into question_stats with arithmetic done in SQL,
// so concurrent writers cannot lose increments. averageTime is the exact mean
// of time_total over time_samples.
func upsertStats(ctx context.Context, ex db.Execer, a Answer, id string, now int64) error {
	correct := 0
	rate := 0.0
	if a.IsCorrect {
		correct, rate = 1, 100
	}
	var timeTotal int64
	samples := 0
	var avg *float64
	if a.TimeSpent != nil {
		timeTotal, samples = int64(*a.TimeSpent), 1
		v := float64(*a.TimeSpent)
		avg = &v
	}
	_, err := ex.ExecContext(ctx, `
INSERT INTO question_stats (id, question_id, total_answers, correct_answers, success_rate, time_total, time_samples, average_time, last_updated)
VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8)
ON CONFLICT (question_id) DO UPDATE SET
  total_answers = question_stats.total_answers + 1,
  correct_answers = question_stats.correct_answers + EXCLUDED.correct_answers,
  success_rate = (question_stats.correct_answers + EXCLUDED.correct_answers) * 100.0 / (question_stats.total_answers + 1),
  time_total = question_stats.time_total + EXCLUDED.time_total,
  time_samples = question_stats.time_samples + EXCLUDED.time_samples,
  average_time = CASE
    WHEN question_stats.time_samples + EXCLUDED.time_samples > 0
    THEN (question_stats.time_total + EXCLUDED.time_total) * 1.0 / (question_stats.time_samples + EXCLUDED.time_samples)
    ELSE NULL END,
  last_updated = EXCLUDED.last_updated`,
		id, a.QuestionID, correct, rate, timeTotal, samples, avg, now)
	return err
}
