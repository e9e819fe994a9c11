package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventSessionStarted   = "SessionStarted"
	EventAnswerRecorded   = "AnswerRecorded"
	EventSessionCompleted = "SessionCompleted"
)

type Event struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Key       string          `json:"key"` // natural key: session id
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"createdAt"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// EventRepo appends to event_log. The execer may be a *sql.Tx so the event
// commits together with the rows it describes.
type EventRepo struct{ now func() time.Time }

func NewEventRepo() *EventRepo { return &EventRepo{now: time.Now} }

func (r *EventRepo) Append(ctx context.Context, ex execer, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), r.now().UnixMilli())
	return err
}

// ListByKey returns the events for one key in append order.
func (r *EventRepo) ListByKey(ctx context.Context, q queryer, key string) ([]Event, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log WHERE key=$1 ORDER BY seq`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}
