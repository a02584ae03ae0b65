// Package report renders the catalogue's generated artifacts: the HTML
// validation report, the markdown repository statistics and the HTML
// summary of a generation run.
package report

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strconv"
	"text/template"

	"github.com/pkg/errors"
)

// Template files
//
//go:embed templates/*
var TemplateFS embed.FS

const (
	ValidationTemplate = "templates/validation.html.tmpl"
	GenerationTemplate = "templates/generation.html.tmpl"
	StatsTemplate      = "templates/stats.md.tmpl"
)

// TimestampLayout is the layout used for "Generated" lines
const TimestampLayout = "2006-01-02 15:04:05"

var funcs = map[string]any{
	"inc":       func(i int) int { return i + 1 },
	"thousands": thousands,
}

func renderHTML(name string, data any) (string, error) {
	content, err := TemplateFS.ReadFile(name)
	if err != nil {
		return "", errors.Wrap(err, "failed to read template file")
	}

	tmpl, err := htmltemplate.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return buf.String(), nil
}

func renderText(name string, data any) (string, error) {
	content, err := TemplateFS.ReadFile(name)
	if err != nil {
		return "", errors.Wrap(err, "failed to read template file")
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return buf.String(), nil
}

// thousands formats n with comma separators, e.g. 12,345
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
