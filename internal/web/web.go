package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates. All output goes through
// html/template's contextual escaping.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"bytes": func(n int64) string {
			if n < 0 {
				n = 0
			}
			return humanize.IBytes(uint64(n))
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04:05")
		},
		"ago":      humanize.Time,
		"truncate": Truncate,
		"abbrev":   Abbreviate,
	}
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Abbreviate is Truncate with a trailing "..." when anything was cut.
func Abbreviate(s string, n int) string {
	if short := Truncate(s, n); short != s {
		return short + "..."
	}
	return s
}
