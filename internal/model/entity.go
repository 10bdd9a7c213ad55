package model

import "time"

type Kind string

const (
	KindMessage Kind = "message"
	KindTask    Kind = "task"
)

// Entity is one recorded console entry: either a log message or a network
// task. The kind is resolved once at ingestion; downstream code switches on
// Kind instead of re-interpreting fields.
type Entity struct {
	ID        string
	CreatedAt time.Time
	Kind      Kind

	// Message entities
	Level   string
	Message string
	Label   string

	// Task entities. StatusCode 0 means the request is still pending.
	Method     string
	URL        string
	StatusCode int
	Duration   time.Duration
	Failure    string
}

// SearchText returns the text a free-text token is matched against.
func (e Entity) SearchText() string {
	if e.Kind == KindTask {
		if e.URL != "" {
			return e.URL
		}
		return e.Failure
	}
	return e.Message
}

// Params exposes the entity as evaluation parameters for expression tokens.
func (e Entity) Params() map[string]any {
	p := map[string]any{
		"id":      e.ID,
		"kind":    string(e.Kind),
		"level":   e.Level,
		"message": e.Message,
		"label":   e.Label,
		"ts":      e.CreatedAt.Format(time.RFC3339),
	}
	if e.Kind == KindTask {
		p["method"] = e.Method
		p["url"] = e.URL
		// govaluate arithmetic wants float64.
		p["status"] = float64(e.StatusCode)
		p["duration_ms"] = float64(e.Duration.Milliseconds())
		p["failure"] = e.Failure
	}
	return p
}

// Before orders entities ascending by creation time, tie-broken by id so the
// order is total and stable across runs.
func (e Entity) Before(o Entity) bool {
	if !e.CreatedAt.Equal(o.CreatedAt) {
		return e.CreatedAt.Before(o.CreatedAt)
	}
	return e.ID < o.ID
}
