// Package report renders query results into human-readable text reports.
// The client core has no knowledge of output format or destination; this
// package is the rendering collaborator it feeds.
package report

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/tetraflow/go-tetration"
)

const (
	// Maximum template size to prevent resource exhaustion from
	// user-supplied template files.
	maxTemplateSize = 1 * 1024 * 1024

	// Maximum rows rendered into a single report.
	maxRows = 100000
)

// Data is the payload handed to report templates.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Endpoint    string
	Records     []tetration.Record
	Total       int
}

// Renderer renders records through text templates.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a Renderer. A nil logger falls back to a no-op.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger.Named("report")}
}

// defaultTemplate lists each record as a block of sorted key/value lines.
const defaultTemplate = `# {{.Title}}
# generated {{.GeneratedAt.Format "2006-01-02T15:04:05Z07:00"}} from {{.Endpoint}} ({{.Total}} records)
{{range .Records}}
{{- range $key, $value := .}}{{$key}}: {{format $value}}
{{end}}---
{{end}}`

var templateFuncs = template.FuncMap{
	"format": formatValue,
	"field": func(r tetration.Record, key string) any {
		return r[key]
	},
	"keys": func(r tetration.Record) []string {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	},
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// Most numeric fields are counters; render integers without the
		// trailing ".0" float formatting would add.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Render renders data through tmplText, or through the default record
// listing when tmplText is empty.
func (r *Renderer) Render(tmplText string, data *Data) (string, error) {
	if tmplText == "" {
		tmplText = defaultTemplate
	}
	if len(tmplText) > maxTemplateSize {
		return "", fmt.Errorf("template too large: %d bytes", len(tmplText))
	}
	if len(data.Records) > maxRows {
		return "", fmt.Errorf("too many records to render: %d", len(data.Records))
	}

	tmpl, err := template.New("report").Funcs(templateFuncs).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	r.logger.Debug("rendered report",
		zap.String("title", data.Title),
		zap.Int("records", len(data.Records)),
		zap.Int("bytes", buf.Len()))

	return buf.String(), nil
}

// Write renders data and writes the result to path, or to stdout when
// path is empty.
func (r *Renderer) Write(path, tmplText string, data *Data) error {
	out, err := r.Render(tmplText, data)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}

	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	r.logger.Info("report written", zap.String("path", path), zap.Int("records", len(data.Records)))
	return nil
}
