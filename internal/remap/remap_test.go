package remap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
)

func files(contents ...string) []ncfile.NCFile {
	out := make([]ncfile.NCFile, len(contents))
	for i, c := range contents {
		out[i] = ncfile.NCFile{Filename: fmt.Sprintf("f%d.nc", i+1), Content: c}
	}
	return out
}

func TestExtractTools(t *testing.T) {
	set := ExtractTools("T1 M06\nt01\nG01 X1 T12\n(T7 in comment)\n")
	assert.Len(t, set, 4)
	for _, tool := range []string{"1", "01", "12", "7"} {
		assert.Contains(t, set, tool)
	}
}

func TestRemapCollidingFiles(t *testing.T) {
	res := RemapMultipleFiles(files("T1 G01 X0", "T1 G01 X0"), 1)

	assert.Equal(t, []ToolMapping{
		{Original: "T1", Remapped: "T1", FileIndex: 0},
		{Original: "T1", Remapped: "T2", FileIndex: 1},
	}, res.AllMappings)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "T1 G01 X0", res.Files[0].Content)
	assert.Equal(t, "T2 G01 X0", res.Files[1].Content)
}

func TestRemapPadsToOriginalWidth(t *testing.T) {
	res := RemapMultipleFiles(files("T05 M06\nT12 M06", "T3 M06"), 1)

	assert.Equal(t, []ToolMapping{
		{Original: "T05", Remapped: "T01", FileIndex: 0},
		{Original: "T12", Remapped: "T02", FileIndex: 0},
		{Original: "T3", Remapped: "T3", FileIndex: 1},
	}, res.AllMappings)
	assert.Equal(t, "T01 M06\nT02 M06", res.Files[0].Content)
	assert.Equal(t, "T3 M06", res.Files[1].Content)
}

func TestRemapCounterOverflowsWidth(t *testing.T) {
	var first []string
	for i := 1; i <= 9; i++ {
		first = append(first, fmt.Sprintf("T%d M06", i+10))
	}
	res := RemapMultipleFiles(files(strings.Join(first, "\n"), "T9 M06"), 1)

	last := res.AllMappings[len(res.AllMappings)-1]
	assert.Equal(t, ToolMapping{Original: "T9", Remapped: "T10", FileIndex: 1}, last)
	assert.Equal(t, "T10 M06", res.Files[1].Content)
}

func TestRemapStartNumber(t *testing.T) {
	res := RemapMultipleFiles(files("T1\nT2"), 20)
	assert.Equal(t, "T20\nT21", res.Files[0].Content)
}

func TestRemapRewriteOrderIsDescending(t *testing.T) {
	res := RemapMultipleFiles(files("T1 G01 X0", "T1 M06\nT10 M06\nt1 G01 X1"), 1)

	assert.Equal(t, []ToolMapping{
		{Original: "T10", Remapped: "T03", FileIndex: 1},
		{Original: "T1", Remapped: "T2", FileIndex: 1},
	}, res.Files[1].Mappings)
	assert.Equal(t, "T2 M06\nT03 M06\nT2 G01 X1", res.Files[1].Content)
}

func TestRemapIsBijectiveAndRoundTrips(t *testing.T) {
	input := files(
		"T1 M06\nG01 X1\nT3 M06",
		"T1 M06\nT2 M06\nT3 M06",
		"T4 M06\nG01 X2",
	)
	res := RemapMultipleFiles(input, 1)

	// one entry per distinct (file, tool)
	assert.Len(t, res.AllMappings, 6)

	assigned := map[string]bool{}
	for _, m := range res.AllMappings {
		assert.False(t, assigned[m.Remapped], "duplicate assignment %s", m.Remapped)
		assigned[m.Remapped] = true
		assert.GreaterOrEqual(t, len(m.Remapped), len(m.Original))
	}

	for i, fr := range res.Files {
		want := map[string]bool{}
		for _, m := range res.AllMappings {
			if m.FileIndex == i {
				want[strings.TrimPrefix(m.Remapped, "T")] = true
			}
		}
		got := map[string]bool{}
		for tool := range ExtractTools(fr.Content) {
			got[tool] = true
		}
		assert.Equal(t, want, got, "file %d", i)
	}
}

func TestRemapNoTools(t *testing.T) {
	res := RemapMultipleFiles(files("G01 X1"), 1)
	assert.Empty(t, res.AllMappings)
	assert.NotNil(t, res.AllMappings)
	assert.Equal(t, "G01 X1", res.Files[0].Content)
}

func TestRemapSingleFile(t *testing.T) {
	res := RemapSingleFile("T1 M06\nT12 M06\n", map[string]string{"1": "5", "12": "7"})
	assert.Equal(t, "T5 M06\nT7 M06\n", res.Content)
	assert.Equal(t, []ToolMapping{
		{Original: "T12", Remapped: "T7", FileIndex: 0},
		{Original: "T1", Remapped: "T5", FileIndex: 0},
	}, res.Mappings)
}

func TestRemapSingleFileDoesNotChain(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		mapping  map[string]string
		expected string
	}{
		{name: "swap", content: "T1 M06\nT2 M06", mapping: map[string]string{"1": "2", "2": "1"}, expected: "T2 M06\nT1 M06"},
		{name: "chain", content: "T2 M06\nt1 M06", mapping: map[string]string{"2": "1", "1": "3"}, expected: "T1 M06\nT3 M06"},
		{name: "padded digits are distinct", content: "T01 T1", mapping: map[string]string{"1": "9"}, expected: "T01 T9"},
		{name: "longer words untouched", content: "T12 M06", mapping: map[string]string{"1": "5"}, expected: "T12 M06"},
		{name: "empty mapping", content: "T1 M06", mapping: nil, expected: "T1 M06"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemapSingleFile(tt.content, tt.mapping).Content)
		})
	}
}

func TestConflicts(t *testing.T) {
	tests := []struct {
		name      string
		input     []ncfile.NCFile
		conflicts []string
	}{
		{name: "disjoint", input: files("T1", "T2"), conflicts: []string{}},
		{name: "shared", input: files("T1 T2", "T2 T1", "T3"), conflicts: []string{"T1", "T2"}},
		{name: "raw strings differ", input: files("T1", "T01"), conflicts: []string{}},
		{name: "repeat inside one file", input: files("T1\nT1"), conflicts: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.conflicts, ConflictingTools(tt.input))
			assert.Equal(t, len(tt.conflicts) > 0, HasConflicts(tt.input))
		})
	}
}

func TestMappingTable(t *testing.T) {
	assert.Equal(t, "No tool remapping required.", MappingTable(nil))

	table := MappingTable([]ToolMapping{{Original: "T1", Remapped: "T2", FileIndex: 1}})
	assert.Contains(t, table, "Tool Remapping:")
	assert.Contains(t, table, "  2  | T1       | T2\n")
}
