package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetraflow/go-tetration"
)

func sampleData() *Data {
	return &Data{
		Title:       "Inventory",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Endpoint:    "inventory/search",
		Records: []tetration.Record{
			{"hostname": "web-01", "ip": "10.0.0.1", "fwd_pkts": float64(9000)},
			{"hostname": "db-01", "ip": "10.0.0.2"},
		},
		Total: 2,
	}
}

func TestRender(t *testing.T) {
	t.Run("default template", func(t *testing.T) {
		out, err := NewRenderer(nil).Render("", sampleData())
		require.NoError(t, err)

		assert.Contains(t, out, "# Inventory")
		assert.Contains(t, out, "inventory/search (2 records)")
		assert.Contains(t, out, "hostname: web-01")
		assert.Contains(t, out, "fwd_pkts: 9000")
		assert.Contains(t, out, "hostname: db-01")
	})

	t.Run("custom template", func(t *testing.T) {
		tmpl := `{{range .Records}}{{field . "hostname"}},{{field . "ip"}}
{{end}}`
		out, err := NewRenderer(nil).Render(tmpl, sampleData())
		require.NoError(t, err)
		assert.Equal(t, "web-01,10.0.0.1\ndb-01,10.0.0.2\n", out)
	})

	t.Run("keys helper sorts", func(t *testing.T) {
		tmpl := `{{range .Records}}{{keys .}}{{end}}`
		data := &Data{Records: []tetration.Record{{"b": 1, "a": 2, "c": 3}}}
		out, err := NewRenderer(nil).Render(tmpl, data)
		require.NoError(t, err)
		assert.Equal(t, "[a b c]", out)
	})

	t.Run("invalid template", func(t *testing.T) {
		_, err := NewRenderer(nil).Render("{{.Broken", sampleData())
		require.Error(t, err)
	})

	t.Run("template too large", func(t *testing.T) {
		_, err := NewRenderer(nil).Render(strings.Repeat("x", maxTemplateSize+1), sampleData())
		require.ErrorContains(t, err, "template too large")
	})

	t.Run("too many records", func(t *testing.T) {
		data := &Data{Records: make([]tetration.Record, maxRows+1)}
		_, err := NewRenderer(nil).Render("", data)
		require.ErrorContains(t, err, "too many records")
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "web-01", formatValue("web-01"))
	assert.Equal(t, "9000", formatValue(float64(9000)))
	assert.Equal(t, "0.5", formatValue(0.5))
	assert.Equal(t, "true", formatValue(true))
}

func TestWrite(t *testing.T) {
	t.Run("writes file with restricted mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		require.NoError(t, NewRenderer(nil).Write(path, "", sampleData()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "hostname: web-01")
	})

	t.Run("render error propagates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		err := NewRenderer(nil).Write(path, "{{.Broken", sampleData())
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})
}
