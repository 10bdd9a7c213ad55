package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dotswift/Pulse/internal/model"
)

type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

func (f Format) MIME() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) ext() string {
	if f == FormatHTML {
		return "html"
	}
	return "txt"
}

// Filename suggests an output name for an export taken now.
func Filename(f Format, compressed bool) string {
	name := fmt.Sprintf("pulse_%s.%s", time.Now().Format("20060102_150405"), f.ext())
	if compressed {
		name += ".gz"
	}
	return name
}

const tsLayout = "2006-01-02 15:04:05.000"

// ToPlainText renders entities as one line each, in input order.
func ToPlainText(entities []model.Entity) string {
	var b strings.Builder
	for _, e := range entities {
		b.WriteString(e.CreatedAt.Format(tsLayout))
		b.WriteByte(' ')
		if e.Kind == model.KindTask {
			status := "…"
			if e.StatusCode != 0 {
				status = fmt.Sprintf("%d", e.StatusCode)
			}
			fmt.Fprintf(&b, "[%s %s] %s (%s)", e.Method, status, e.URL, e.Duration)
			if e.Failure != "" {
				fmt.Fprintf(&b, " failure: %s", e.Failure)
			}
		} else {
			fmt.Fprintf(&b, "%-5s", strings.ToUpper(e.Level))
			if e.Label != "" {
				fmt.Fprintf(&b, " [%s]", e.Label)
			}
			b.WriteByte(' ')
			b.WriteString(e.Message)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ToHTML renders entities as a minimal self-contained document.
func ToHTML(entities []model.Entity) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Pulse export</title>\n")
	b.WriteString("<style>body{font-family:monospace;font-size:13px}table{border-collapse:collapse;width:100%}td{padding:2px 8px;vertical-align:top;border-bottom:1px solid #eee}.err{color:#c0392b}.task{color:#2c3e50}</style>\n")
	b.WriteString("</head><body><table>\n")
	for _, e := range entities {
		b.WriteString("<tr><td>")
		b.WriteString(e.CreatedAt.Format(tsLayout))
		b.WriteString("</td><td")
		if e.Kind == model.KindTask {
			b.WriteString(" class=\"task\">")
			status := "pending"
			if e.StatusCode != 0 {
				status = fmt.Sprintf("%d", e.StatusCode)
			}
			b.WriteString(html.EscapeString(fmt.Sprintf("%s %s %s (%s)", e.Method, status, e.URL, e.Duration)))
			if e.Failure != "" {
				b.WriteString(" <span class=\"err\">")
				b.WriteString(html.EscapeString(e.Failure))
				b.WriteString("</span>")
			}
		} else {
			if strings.EqualFold(e.Level, "error") || strings.EqualFold(e.Level, "fatal") {
				b.WriteString(" class=\"err\"")
			}
			b.WriteString(">")
			b.WriteString(html.EscapeString(strings.ToUpper(e.Level)))
			b.WriteString(" ")
			b.WriteString(html.EscapeString(e.Message))
		}
		b.WriteString("</td></tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}

// Serialize renders entities in the requested format.
func Serialize(f Format, entities []model.Entity) (string, error) {
	switch f {
	case FormatText:
		return ToPlainText(entities), nil
	case FormatHTML:
		return ToHTML(entities), nil
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}
}
