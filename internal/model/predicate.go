package model

import "time"

type Mode string

const (
	ModeAll     Mode = "all"
	ModeNetwork Mode = "network"
)

// Predicate is the coarse store-level filter: mode and date bound only.
// Fine-grained token matching stays in the search layer so the store query
// remains cheap and reusable.
type Predicate struct {
	Mode  Mode
	Since *time.Time
	Until *time.Time
}

func (p Predicate) Allow(e Entity) bool {
	if p.Mode == ModeNetwork && e.Kind != KindTask {
		return false
	}
	if p.Since != nil && e.CreatedAt.Before(*p.Since) {
		return false
	}
	if p.Until != nil && e.CreatedAt.After(*p.Until) {
		return false
	}
	return true
}
