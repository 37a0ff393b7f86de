package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, r *Renderer, name string, data any) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := r.RenderToBuffer(&buf, name, data)
	return buf.String(), err
}

func TestEmbeddedFragments(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	html, err := render(t, r, "select-option", map[string]string{"Value": "pga", "Label": "Peak <Ground>"})
	require.NoError(t, err)
	assert.Equal(t, `<option value="pga">Peak &lt;Ground&gt;</option>`, html)

	html, err = render(t, r, "table-row", map[string]any{"Key": "pop", "Value": nil})
	require.NoError(t, err)
	assert.Equal(t, `<tr><td>pop</td><td></td></tr>`, html)

	html, err = render(t, r, "attribute-checkbox", map[string]any{"Key": "gdp", "Checked": true})
	require.NoError(t, err)
	assert.Contains(t, html, `value="gdp"`)
	assert.Contains(t, html, "checked")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := render(t, Must(), "nope", nil)
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte(`{{define "greet"}}hi {{.}}{{end}}`), 0o644))

	r := Must()
	require.NoError(t, r.Reload(dir))
	html, err := render(t, r, "greet", "bob")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", html)

	_, err = render(t, r, "select-option", nil)
	assert.Error(t, err, "reload replaces the template set")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte(`{{define "broken"}}{{.Oops`), 0o644))
	assert.Error(t, r.Reload(dir))
	html, err = render(t, r, "greet", "ann")
	require.NoError(t, err)
	assert.Equal(t, "hi ann", html, "a failed reload keeps the previous set")

	fromDir, err := NewFromDir(t.TempDir())
	assert.Error(t, err, "no fragments to parse")
	assert.Nil(t, fromDir)
}
