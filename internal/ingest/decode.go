package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/dotswift/Pulse/internal/model"
)

var parserPool fastjson.ParserPool

// Decode turns one record line into an Entity. Lines that are not valid JSON
// objects are kept as plain log-message entities so malformed input degrades
// instead of disappearing.
func Decode(line, source string) model.Entity {
	line = strings.TrimSpace(line)
	p := parserPool.Get()
	defer parserPool.Put(p)
	v, err := p.Parse(line)
	if err != nil || v.Type() != fastjson.TypeObject {
		return model.Entity{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
			Kind:      model.KindMessage,
			Level:     "info",
			Message:   line,
			Label:     source,
		}
	}

	e := model.Entity{
		ID:        str(v, "id"),
		CreatedAt: ts(v),
		Level:     strings.ToLower(str(v, "level")),
		Message:   str(v, "message"),
		Label:     str(v, "label"),
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Label == "" {
		e.Label = source
	}
	switch strings.ToLower(str(v, "kind")) {
	case "task", "network", "network-task":
		e.Kind = model.KindTask
		e.Method = strings.ToUpper(str(v, "method"))
		e.URL = str(v, "url")
		e.StatusCode = v.GetInt("status")
		e.Duration = time.Duration(v.GetFloat64("duration_ms") * float64(time.Millisecond))
		e.Failure = str(v, "failure")
	default:
		e.Kind = model.KindMessage
		if e.Level == "" {
			e.Level = "info"
		}
		if e.Message == "" {
			e.Message = line
		}
	}
	return e
}

func str(v *fastjson.Value, key string) string {
	b := v.GetStringBytes(key)
	if b == nil {
		return ""
	}
	return string(b)
}

func ts(v *fastjson.Value) time.Time {
	if b := v.GetStringBytes("ts"); b != nil {
		if t, err := time.Parse(time.RFC3339Nano, string(b)); err == nil {
			return t
		}
	}
	return time.Now()
}
