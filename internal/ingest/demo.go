package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dotswift/Pulse/internal/model"
)

var demoMessages = []struct {
	level, msg string
}{
	{"info", "session established"},
	{"debug", "cache warm-up finished in 42ms"},
	{"warn", "retrying request after timeout"},
	{"info", "user preferences synced"},
	{"error", "failed to decode response body"},
}

var demoEndpoints = []struct {
	method, url string
	statuses    []int
}{
	{"GET", "https://api.example.com/v1/items", []int{200, 200, 200, 404}},
	{"POST", "https://api.example.com/v1/items", []int{201, 400}},
	{"GET", "https://api.example.com/v1/profile", []int{200, 401}},
	{"DELETE", "https://api.example.com/v1/items/7", []int{204, 500}},
}

// DemoGenerator synthesizes a mixed message/task stream for running the
// console without any input.
type DemoGenerator struct {
	rng *rand.Rand
	n   int
}

func NewDemoGenerator() *DemoGenerator {
	return &DemoGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *DemoGenerator) Next() model.Entity {
	g.n++
	now := time.Now()
	if g.n%3 == 0 {
		ep := demoEndpoints[g.rng.Intn(len(demoEndpoints))]
		e := model.Entity{
			ID:        uuid.NewString(),
			CreatedAt: now,
			Kind:      model.KindTask,
			Method:    ep.method,
			URL:       ep.url,
			Duration:  time.Duration(g.rng.Intn(900)+20) * time.Millisecond,
			Label:     "demo",
		}
		// Roughly one in five tasks stays pending for a while.
		if g.rng.Intn(5) != 0 {
			e.StatusCode = ep.statuses[g.rng.Intn(len(ep.statuses))]
			if e.StatusCode >= 500 {
				e.Failure = fmt.Sprintf("server error (%d)", e.StatusCode)
			}
		}
		return e
	}
	m := demoMessages[g.rng.Intn(len(demoMessages))]
	return model.Entity{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Kind:      model.KindMessage,
		Level:     m.level,
		Message:   m.msg,
		Label:     "demo",
	}
}
