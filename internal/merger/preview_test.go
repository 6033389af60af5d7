package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
)

func TestPreviewSingleFileEstimate(t *testing.T) {
	content := "O1\nT1 M06\nG01 X1\nM30\n"
	pv, err := Preview([]ncfile.NCFile{nc("a.nc", content)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, ncfile.LineCount(content), pv.EstimatedOutputLines)
	require.Len(t, pv.FileStats, 1)
	assert.Equal(t, FileStat{
		Filename: "a.nc",
		Lines:    5,
		Tools:    []string{"T1"},
		GCodes:   []string{"G01"},
		MCodes:   []string{"M06", "M30"},
	}, pv.FileStats[0])
	assert.False(t, pv.Conflicts.HasToolConflicts)
	assert.Empty(t, pv.Conflicts.ConflictingTools)
}

func TestPreviewCommentOverhead(t *testing.T) {
	files := []ncfile.NCFile{nc("a.nc", "G01 X1"), nc("b.nc", "G01 X2\nM30")}
	pv, err := Preview(files, Options{AddComments: true})
	require.NoError(t, err)
	assert.Equal(t, 3+2*perFileCommentLines+headerCommentLines, pv.EstimatedOutputLines)
}

func TestPreviewConflicts(t *testing.T) {
	files := []ncfile.NCFile{
		nc("a.nc", "T2 M06\nT1 M06"),
		nc("b.nc", "T1 M06\nT2 M06"),
		nc("c.nc", "T3 M06\nT01 M06"),
	}
	pv, err := Preview(files, Options{})
	require.NoError(t, err)
	assert.Equal(t, Conflicts{HasToolConflicts: true, ConflictingTools: []string{"T1", "T2"}}, pv.Conflicts)
}

func TestPreviewRejectsBadInput(t *testing.T) {
	_, err := Preview(nil, Options{})
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = Preview([]ncfile.NCFile{nc("x.txt", "no codes here")}, Options{})
	assert.True(t, IsInputError(err))
}

func TestPreviewAndMerge(t *testing.T) {
	files := []ncfile.NCFile{nc("a.nc", "T1 G01 X0\nM30"), nc("b.nc", "T1 G01 X0\nM30")}
	mp, err := PreviewAndMerge(files, Options{RemapTools: true})
	require.NoError(t, err)

	assert.Equal(t, "T1 G01 X0\nT2 G01 X0\nM30", mp.MergedContent)
	assert.Len(t, mp.ToolMappings, 2)
	assert.True(t, mp.Conflicts.HasToolConflicts)
	assert.Len(t, mp.FileStats, 2)
}
