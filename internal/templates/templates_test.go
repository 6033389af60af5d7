package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	s := NewStore()
	assert.Equal(t, []string{None, "basic", "detailed", "fanuc", "minimal"}, s.Names())

	tpl := s.ForMerge("fanuc")
	require.NotNil(t, tpl)
	assert.Equal(t, "G21 G17 G40 G49 G80 G90", tpl.Header)

	minimal := s.ForMerge("minimal")
	require.NotNil(t, minimal)
	assert.Empty(t, minimal.Footer)
}

func TestForMergeNone(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.ForMerge(""))
	assert.Nil(t, s.ForMerge(None))
	assert.Nil(t, s.ForMerge("does-not-exist"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	data := `
templates:
  haas:
    description: Haas mill
    header: |-
      G00 G17 G40 G49 G80 G90
      G54
    footer: G28 G91 Z0.
  minimal:
    header: G91
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s := NewStore()
	require.NoError(t, s.LoadFile(path))

	haas, ok := s.Get("haas")
	require.True(t, ok)
	assert.Equal(t, "haas", haas.Name)
	assert.Equal(t, "Haas mill", haas.Description)
	assert.Equal(t, "G00 G17 G40 G49 G80 G90\nG54", haas.Header)
	assert.Equal(t, "G28 G91 Z0.", haas.Footer)

	minimal, _ := s.Get("minimal")
	assert.Equal(t, "G91", minimal.Header)
	assert.Len(t, s.All(), 5)
}

func TestLoadYAMLErrors(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.LoadYAML([]byte("templates: [not, a, map]")))
	assert.Error(t, s.LoadYAML([]byte("templates:\n  none:\n    header: G90\n")))
	assert.Error(t, s.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
