package ncfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"G01", ""}, Lines("G01\n"))
	assert.Equal(t, 2, LineCount("G01\n"))
	assert.Equal(t, 1, LineCount(""))
	assert.Equal(t, 3, LineCount("a\nb\nc"))
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "G01 X1", Trim("  G01 X1\r"))
	assert.Equal(t, "%", Trim("\uFEFF%"))
	assert.Equal(t, "", Trim(" \t "))
	assert.Equal(t, "G01", Trim("\u00A0\u3000G01\u2028\v"))
	assert.Equal(t, "\u0085G01\u0085", Trim(" \u0085G01\u0085 "))
	assert.False(t, IsSpace('\u0085'))
	assert.True(t, IsSpace('\uFEFF'))
}

func TestNewCoercesInvalidUTF8(t *testing.T) {
	f := New("a.nc", []byte{'G', '0', '1', 0xff})
	assert.Equal(t, "G01\uFFFD", f.Content)
	assert.Equal(t, "a.nc", f.Filename)
}

func TestSuggestOutputName(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{name: "no files", input: nil, expected: "merged.nc"},
		{name: "single file", input: []string{"bracket.nc"}, expected: "bracket_merged.nc"},
		{name: "shared prefix", input: []string{"part_op1.nc", "part_op2.nc"}, expected: "part_op_merged.nc"},
		{name: "numbered parts", input: []string{"housing-01.nc", "housing-02.NC"}, expected: "housing_merged.nc"},
		{name: "short prefix falls back to first name", input: []string{"ab1.nc", "xy2.nc"}, expected: "ab_merged.nc"},
		{name: "directories ignored", input: []string{"/tmp/jobs/plate1.nc", "/tmp/jobs/plate2.nc"}, expected: "plate_merged.nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestOutputName(tt.input))
		})
	}
}

func TestLoaderKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	b := write("b.nc", "G01 X2\n")
	a := write("a.nc", "G01 X1\n")

	files, err := NewLoader(4, nil).Load(context.Background(), []string{b, a})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.nc", files[0].Filename)
	assert.Equal(t, "G01 X2\n", files[0].Content)
	assert.Equal(t, "a.nc", files[1].Filename)
}

func TestLoaderExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"op2.nc":   "G01 X2",
		"op1.nc":   "G01 X1",
		"notes.md": "# not a program",
		"op3.tap":  "G01 X3",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	files, err := NewLoader(2, nil).Load(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"op1.nc", "op2.nc", "op3.tap"}, Names(files))
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(1, nil).Load(context.Background(), []string{filepath.Join(t.TempDir(), "missing.nc")})
	assert.Error(t, err)
}
