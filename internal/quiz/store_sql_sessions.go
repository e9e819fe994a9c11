package quiz

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/jsquiz/internal/db"
	syncx "github.com/mind-engage/jsquiz/internal/sync"
)

func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := millis(s.now())
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id,email,username,display_name,avatar,is_anonymous,created_at,updated_at,last_active_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Email, u.Username, u.DisplayName, u.Avatar, u.IsAnonymous, now, now, now)
	if err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, u.ID)
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	var r userRow
	err := s.conn.QueryRowContext(ctx, `SELECT `+userCols+` FROM users u WHERE u.id=$1`, id).Scan(r.dest()...)
	if err != nil {
		return User{}, noRows(err, "user")
	}
	return r.value(), nil
}

func (s *SQLStore) CreateSession(ctx context.Context, sess Session) (Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	err := db.WithTx(ctx, s.conn, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_sessions (id,session_token,started_at,is_completed,total_questions,correct_answers,score,user_id,user_agent,ip_address,device_type)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			sess.ID, sess.SessionToken, millis(sess.StartedAt), false, sess.TotalQuestions, 0, 0.0,
			sess.UserID, sess.UserAgent, sess.IPAddress, string(sess.DeviceType))
		if err != nil {
			return err
		}
		return s.events.Append(ctx, tx, syncx.EventSessionStarted, sess.ID, map[string]any{
			"userId":     sess.UserID,
			"deviceType": sess.DeviceType,
		})
	})
	if err != nil {
		return Session{}, err
	}
	return s.getSession(ctx, s.conn, `s.id=$1`, sess.ID, false)
}

func (s *SQLStore) GetSessionByID(ctx context.Context, id string) (Session, error) {
	return s.getSession(ctx, s.conn, `s.id=$1`, id, true)
}

func (s *SQLStore) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	return s.getSession(ctx, s.conn, `s.session_token=$1`, token, true)
}

func (s *SQLStore) getSession(ctx context.Context, q db.Execer, where string, arg any, withAnswers bool) (Session, error) {
	var r sessionRow
	err := q.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM quiz_sessions s WHERE `+where, arg).Scan(r.dest()...)
	if err != nil {
		return Session{}, noRows(err, "session")
	}
	sess := r.value()
	if !withAnswers {
		return sess, nil
	}
	answers, err := s.loadAnswers(ctx, q, sess.ID)
	if err != nil {
		return Session{}, err
	}
	sess.Answers = answers
	return sess, nil
}

// loadAnswers joins each answer to its question (with category and
// difficulty) and the chosen option, in answer order.
func (s *SQLStore) loadAnswers(ctx context.Context, q db.Execer, sessionID string) ([]AnswerDetail, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+answerCols+`, `+questionCols+`, `+categoryCols+`, `+difficultyCols+`, `+optionCols+`
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 JOIN categories c ON c.id = q.category_id
		 JOIN difficulties d ON d.id = q.difficulty_id
		 JOIN options o ON o.id = a.option_id
		 WHERE a.session_id=$1
		 ORDER BY a.answered_at, a.id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AnswerDetail{}
	for rows.Next() {
		var ar answerRow
		var qr questionRow
		var cr categoryRow
		var dr difficultyRow
		var or optionRow
		if err := rows.Scan(concat(ar.dest(), qr.dest(), cr.dest(), dr.dest(), or.dest())...); err != nil {
			return nil, err
		}
		question := qr.value()
		c, d := cr.value(), dr.value()
		question.Category, question.Difficulty = &c, &d
		out = append(out, AnswerDetail{Answer: ar.value(), Question: question, Option: or.o})
	}
	return out, rows.Err()
}

func (s *SQLStore) RecordAnswer(ctx context.Context, a Answer) (Session, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var sess Session
	err := db.WithTx(ctx, s.conn, nil, func(tx *sql.Tx) error {
		// The row lock serializes submissions for one session on postgres.
		var total int
		err := tx.QueryRowContext(ctx,
			`SELECT total_questions FROM quiz_sessions WHERE id=$1`+db.LockClause(s.driver), a.SessionID).Scan(&total)
		if err != nil {
			return noRows(err, "session")
		}

		answeredAt := millis(a.AnsweredAt)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (id,is_correct,time_spent,answered_at,session_id,question_id,option_id,user_id)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			a.ID, a.IsCorrect, a.TimeSpent, answeredAt, a.SessionID, a.QuestionID, a.OptionID, a.UserID); err != nil {
			return err
		}
		if err := upsertStats(ctx, tx, a, uuid.NewString(), answeredAt); err != nil {
			return err
		}

		var logged int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM answers WHERE session_id=$1 AND is_correct=$2`, a.SessionID, true).Scan(&logged); err != nil {
			return err
		}
		correct, score := SessionScore(logged, total)
		if _, err := tx.ExecContext(ctx,
			`UPDATE quiz_sessions SET correct_answers=$1, score=$2 WHERE id=$3`, correct, score, a.SessionID); err != nil {
			return err
		}
		if err := s.events.Append(ctx, tx, syncx.EventAnswerRecorded, a.SessionID, map[string]any{
			"answerId":   a.ID,
			"questionId": a.QuestionID,
			"isCorrect":  a.IsCorrect,
			"score":      score,
		}); err != nil {
			return err
		}

		sess, err = s.getSession(ctx, tx, `s.id=$1`, a.SessionID, false)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

var errAlreadyCompleted = errors.New("session already completed")

func (s *SQLStore) CompleteSession(ctx context.Context, sessionID string, completedAt time.Time, timeSpent *int) (Session, error) {
	err := db.WithTx(ctx, s.conn, nil, func(tx *sql.Tx) error {
		var (
			done   bool
			userID string
			score  float64
		)
		err := tx.QueryRowContext(ctx,
			`SELECT is_completed, user_id, score FROM quiz_sessions WHERE id=$1`+db.LockClause(s.driver), sessionID).
			Scan(&done, &userID, &score)
		if err != nil {
			return noRows(err, "session")
		}
		if done {
			return errAlreadyCompleted
		}

		at := millis(completedAt)
		if _, err := tx.ExecContext(ctx,
			`UPDATE quiz_sessions SET is_completed=$1, completed_at=$2, time_spent=$3 WHERE id=$4`,
			true, at, timeSpent, sessionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET
			   total_sessions = total_sessions + 1,
			   total_score = total_score + $1,
			   best_score = CASE WHEN best_score < $2 THEN $2 ELSE best_score END,
			   last_active_at = $3,
			   updated_at = $3
			 WHERE id=$4`,
			int(math.Round(score)), score, at, userID); err != nil {
			return err
		}
		return s.events.Append(ctx, tx, syncx.EventSessionCompleted, sessionID, map[string]any{
			"userId":    userID,
			"score":     score,
			"timeSpent": timeSpent,
		})
	})
	if err != nil && !errors.Is(err, errAlreadyCompleted) {
		return Session{}, err
	}
	return s.GetSessionByID(ctx, sessionID)
}

func (s *SQLStore) ListCompletedSessions(ctx context.Context, q DashboardQuery) ([]Session, error) {
	query := `SELECT ` + sessionCols + ` FROM quiz_sessions s WHERE s.is_completed=$1`
	args := []any{true}
	if q.UserID != "" {
		query += ` AND s.user_id=$2`
		args = append(args, q.UserID)
	}
	query += ` ORDER BY s.completed_at DESC, s.id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT ` + placeholders(len(args), 1)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		var r sessionRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		out = append(out, r.value())
	}
	return out, rows.Err()
}
