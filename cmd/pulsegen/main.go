// pulsegen writes a synthetic entity record stream (NDJSON) for feeding the
// console during development.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dotswift/Pulse/internal/ingest"
	"github.com/dotswift/Pulse/internal/model"
)

type record struct {
	ID         string  `json:"id"`
	TS         string  `json:"ts"`
	Kind       string  `json:"kind"`
	Level      string  `json:"level,omitempty"`
	Message    string  `json:"message,omitempty"`
	Label      string  `json:"label,omitempty"`
	Method     string  `json:"method,omitempty"`
	URL        string  `json:"url,omitempty"`
	Status     int     `json:"status,omitempty"`
	DurationMS float64 `json:"duration_ms,omitempty"`
	Failure    string  `json:"failure,omitempty"`
}

func main() {
	var (
		rate        float64
		outPath     string
		count       int
		durationStr string
	)
	flag.Float64Var(&rate, "rate", 5.0, "Entities per second")
	flag.StringVar(&outPath, "out", "", "Output file path (default stdout)")
	flag.IntVar(&count, "count", 0, "Stop after N entities (0 = unbounded)")
	flag.StringVar(&durationStr, "duration", "", "Optional run duration (e.g., 30s, 2m)")
	flag.Parse()

	var deadline time.Time
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		deadline = time.Now().Add(d)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	g := ingest.NewDemoGenerator()
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-sigCh:
			return
		case <-ticker.C:
			if !deadline.IsZero() && time.Now().After(deadline) {
				return
			}
			b, _ := json.Marshal(toRecord(g.Next()))
			w.Write(b)
			w.WriteByte('\n')
			w.Flush()
			n++
			if count > 0 && n >= count {
				return
			}
		}
	}
}

func toRecord(e model.Entity) record {
	r := record{
		ID:    e.ID,
		TS:    e.CreatedAt.Format(time.RFC3339Nano),
		Kind:  string(e.Kind),
		Label: e.Label,
	}
	if e.Kind == model.KindTask {
		r.Method = e.Method
		r.URL = e.URL
		r.Status = e.StatusCode
		r.DurationMS = float64(e.Duration) / float64(time.Millisecond)
		r.Failure = e.Failure
	} else {
		r.Level = e.Level
		r.Message = e.Message
	}
	return r
}
