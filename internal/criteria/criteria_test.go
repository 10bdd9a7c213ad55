package criteria

import (
	"testing"
	"time"

	"github.com/dotswift/Pulse/internal/model"
)

func msg(id, level, text string, t time.Time) model.Entity {
	return model.Entity{ID: id, Kind: model.KindMessage, Level: level, Message: text, CreatedAt: t}
}

func task(id, method, url string, status int, t time.Time) model.Entity {
	return model.Entity{ID: id, Kind: model.KindTask, Method: method, URL: url, StatusCode: status, CreatedAt: t}
}

func TestParseQuery(t *testing.T) {
	tokens := ParseQuery("timeout status:404 level:error method:get")
	if len(tokens) != 4 {
		t.Fatalf("tokens: %d", len(tokens))
	}
	if tokens[0].Kind != TokenText || tokens[0].Title != "timeout" {
		t.Fatalf("token 0: %+v", tokens[0])
	}
	if tokens[1].Kind != TokenStatus || tokens[1].Title != "404" {
		t.Fatalf("token 1: %+v", tokens[1])
	}
	if tokens[2].Kind != TokenLevel || tokens[3].Kind != TokenMethod {
		t.Fatalf("tokens 2/3: %+v %+v", tokens[2], tokens[3])
	}
}

func TestParseQueryExpr(t *testing.T) {
	tokens := ParseQuery("`status >= 400`")
	if len(tokens) != 1 || tokens[0].Kind != TokenExpr || tokens[0].Title != "status >= 400" {
		t.Fatalf("tokens: %+v", tokens)
	}
}

func TestTextTokenAND(t *testing.T) {
	now := time.Now()
	m := Compile(Criteria{Tokens: ParseQuery("read timeout")})
	if _, ok := m.Match(msg("1", "warn", "Read timeout", now)); !ok {
		t.Fatalf("expected match")
	}
	if _, ok := m.Match(msg("2", "warn", "Connection timeout", now)); ok {
		t.Fatalf("AND semantics: 'read' is missing")
	}
}

func TestTextTokenHighlightRange(t *testing.T) {
	m := Compile(Criteria{Tokens: ParseQuery("timeout")})
	info, ok := m.Match(msg("1", "warn", "Connection timeout", time.Now()))
	if !ok {
		t.Fatalf("expected match")
	}
	if len(info.Ranges) != 1 || info.Ranges[0] != [2]int{11, 18} {
		t.Fatalf("ranges: %v", info.Ranges)
	}
}

func TestStructuredTokens(t *testing.T) {
	now := time.Now()
	m := Compile(Criteria{Tokens: ParseQuery("status:404")})
	info, ok := m.Match(task("1", "GET", "https://x/items", 404, now))
	if !ok || !info.Structured {
		t.Fatalf("expected structured match, got ok=%v info=%+v", ok, info)
	}
	if _, ok := m.Match(task("2", "GET", "https://x/items", 200, now)); ok {
		t.Fatalf("status 200 must not match status:404")
	}
	if _, ok := m.Match(msg("3", "error", "404 in text", now)); ok {
		t.Fatalf("status token must not match a log message")
	}
}

func TestExprToken(t *testing.T) {
	now := time.Now()
	m := Compile(Criteria{Tokens: []Token{{Title: "status >= 400 && method == 'GET'", Kind: TokenExpr}}})
	if _, ok := m.Match(task("1", "GET", "https://x/a", 500, now)); !ok {
		t.Fatalf("expected expr match")
	}
	if _, ok := m.Match(task("2", "POST", "https://x/a", 500, now)); ok {
		t.Fatalf("POST must not match")
	}
}

func TestMalformedExprMatchesNothing(t *testing.T) {
	m := Compile(Criteria{Tokens: []Token{{Title: "status >=", Kind: TokenExpr}}})
	if _, ok := m.Match(task("1", "GET", "https://x/a", 500, time.Now())); ok {
		t.Fatalf("malformed expression must match nothing")
	}
}

func TestPredicateSessionBound(t *testing.T) {
	start := time.Now()
	c := Default(model.ModeAll)
	p := c.Predicate(start)
	if p.Since == nil || !p.Since.Equal(start) {
		t.Fatalf("session-only predicate must bound at session start")
	}
	c.DateFilter.SessionOnly = false
	p = c.Predicate(start)
	if p.Since != nil {
		t.Fatalf("cleared session bound must not re-impose start")
	}
}
