package criteria

import (
	"strconv"
	"strings"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/util/logx"
)

type TokenKind string

const (
	TokenText   TokenKind = "text"
	TokenLevel  TokenKind = "level"
	TokenStatus TokenKind = "status"
	TokenMethod TokenKind = "method"
	TokenExpr   TokenKind = "expr"
)

// Token is one atomic search term. Tokens combine with AND semantics.
type Token struct {
	Title string
	Kind  TokenKind
}

// DateFilter bounds entities by creation time. SessionOnly limits the view to
// entities created after session start; clearing it is one-way within a
// session ("show previous sessions").
type DateFilter struct {
	SessionOnly bool
	From        *time.Time
	To          *time.Time
}

// Criteria is the complete set of active filters for the console.
type Criteria struct {
	Mode       model.Mode
	DateFilter DateFilter
	Tokens     []Token
}

func Default(mode model.Mode) Criteria {
	return Criteria{Mode: mode, DateFilter: DateFilter{SessionOnly: true}}
}

// Predicate derives the coarse store-level filter: mode and date bound only.
func (c Criteria) Predicate(sessionStart time.Time) model.Predicate {
	p := model.Predicate{Mode: c.Mode}
	if c.DateFilter.SessionOnly {
		t := sessionStart
		p.Since = &t
	} else {
		p.Since = c.DateFilter.From
		p.Until = c.DateFilter.To
	}
	return p
}

func (c Criteria) HasTokens() bool { return len(c.Tokens) > 0 }

// ParseQuery splits a raw query line into tokens. "status:404", "level:error"
// and "method:get" become structured tokens, a leading/trailing backtick pair
// becomes an expression token, everything else is a free-text token.
func ParseQuery(q string) []Token {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	if strings.HasPrefix(q, "`") && strings.HasSuffix(q, "`") && len(q) > 2 {
		return []Token{{Title: q[1 : len(q)-1], Kind: TokenExpr}}
	}
	var out []Token
	for _, w := range strings.Fields(q) {
		switch {
		case strings.HasPrefix(strings.ToLower(w), "status:"):
			out = append(out, Token{Title: w[len("status:"):], Kind: TokenStatus})
		case strings.HasPrefix(strings.ToLower(w), "level:"):
			out = append(out, Token{Title: w[len("level:"):], Kind: TokenLevel})
		case strings.HasPrefix(strings.ToLower(w), "method:"):
			out = append(out, Token{Title: w[len("method:"):], Kind: TokenMethod})
		default:
			out = append(out, Token{Title: w, Kind: TokenText})
		}
	}
	return out
}

// MatchInfo describes why an entity matched.
type MatchInfo struct {
	Structured bool
	Ranges     [][2]int // byte ranges of text-token hits in SearchText
}

// Matcher evaluates all tokens of a Criteria against one entity. Compile
// errors degrade the broken token to "matches nothing"; they never abort a
// scan.
type Matcher struct {
	tokens []compiledToken
}

type compiledToken struct {
	token  Token
	expr   *govaluate.EvaluableExpression
	broken bool
}

func Compile(c Criteria) *Matcher {
	m := &Matcher{}
	for _, t := range c.Tokens {
		ct := compiledToken{token: t}
		if t.Kind == TokenExpr {
			expr, err := govaluate.NewEvaluableExpression(t.Title)
			if err != nil {
				logx.Warnf("criteria: bad expression %q: %v", t.Title, err)
				ct.broken = true
			} else {
				ct.expr = expr
			}
		}
		m.tokens = append(m.tokens, ct)
	}
	return m
}

// Match reports whether the entity satisfies every token (AND) and returns
// match details for ranking and highlighting.
func (m *Matcher) Match(e model.Entity) (MatchInfo, bool) {
	var info MatchInfo
	for _, ct := range m.tokens {
		if ct.broken {
			return MatchInfo{}, false
		}
		switch ct.token.Kind {
		case TokenText:
			text := strings.ToLower(e.SearchText())
			needle := strings.ToLower(ct.token.Title)
			i := strings.Index(text, needle)
			if i < 0 {
				return MatchInfo{}, false
			}
			info.Ranges = append(info.Ranges, [2]int{i, i + len(needle)})
		case TokenLevel:
			if !strings.EqualFold(e.Level, ct.token.Title) {
				return MatchInfo{}, false
			}
			info.Structured = true
		case TokenStatus:
			want, err := strconv.Atoi(ct.token.Title)
			if err != nil || e.Kind != model.KindTask || e.StatusCode != want {
				return MatchInfo{}, false
			}
			info.Structured = true
		case TokenMethod:
			if e.Kind != model.KindTask || !strings.EqualFold(e.Method, ct.token.Title) {
				return MatchInfo{}, false
			}
			info.Structured = true
		case TokenExpr:
			res, err := ct.expr.Evaluate(e.Params())
			if err != nil {
				return MatchInfo{}, false
			}
			b, ok := res.(bool)
			if !ok || !b {
				return MatchInfo{}, false
			}
			info.Structured = true
		}
	}
	return info, true
}
