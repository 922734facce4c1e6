package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	QuizAttemptSubmitted = "QuizAttemptSubmitted"
	DsaProblemToggled    = "DsaProblemToggled"
	LessonCompleted      = "LessonCompleted"
	CertificateIssued    = "CertificateIssued"
	CertificateRevoked   = "CertificateRevoked"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, siteID: "local"} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Record appends a typed event. The write is best effort: a failure is logged
// and never surfaces to the request that produced the event.
func (r *EventRepo) Record(ctx context.Context, typ, key string, payload any) {
	if r == nil {
		return
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		log.Printf("event %s/%s: marshal: %v", typ, key, err)
		return
	}
	if err := r.Append(ctx, Event{Type: typ, Key: key, DataJSON: string(buf)}); err != nil {
		log.Printf("event %s/%s: append: %v", typ, key, err)
	}
}

// Since returns events after seq in append order.
func (r *EventRepo) Since(ctx context.Context, seq int64, limit int) ([]Event, error) {
	return r.Search(ctx, seq, "", limit)
}

// Search is Since restricted to one event type. An empty typ matches all.
func (r *EventRepo) Search(ctx context.Context, seq int64, typ string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log
		 WHERE seq > $1 AND ($2 = '' OR typ = $2)
		 ORDER BY seq LIMIT $3`,
		seq, typ, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
