package merger

import (
	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/remap"
	"github.com/nemooon/nc-file-merger/internal/validator"
)

// Estimate overheads for the comment blocks a merge adds.
const (
	perFileCommentLines = 6
	headerCommentLines  = 10
)

// FileStat is the per-file part of a preview.
type FileStat struct {
	Filename string   `json:"filename"`
	Lines    int      `json:"lines"`
	Tools    []string `json:"tools"`
	GCodes   []string `json:"gCodes"`
	MCodes   []string `json:"mCodes"`
}

// Conflicts lists tool numbers used by more than one file.
type Conflicts struct {
	HasToolConflicts bool     `json:"hasToolConflicts"`
	ConflictingTools []string `json:"conflictingTools"`
}

// PreviewResult describes what a merge would combine.
type PreviewResult struct {
	FileStats            []FileStat `json:"fileStats"`
	Conflicts            Conflicts  `json:"conflicts"`
	EstimatedOutputLines int        `json:"estimatedOutputLines"`
}

// Preview reports per-file statistics, tool conflicts and a rough output
// size without merging. The estimate ignores dropped lines and is only
// indicative.
func Preview(files []ncfile.NCFile, opts Options) (PreviewResult, error) {
	if err := checkInput(files); err != nil {
		return PreviewResult{}, err
	}

	res := PreviewResult{FileStats: make([]FileStat, len(files))}
	for i, f := range files {
		st := validator.GetStats(f.Content)
		res.FileStats[i] = FileStat{
			Filename: f.Filename,
			Lines:    st.TotalLines,
			Tools:    st.Tools.Sorted(),
			GCodes:   st.GCodes.Sorted(),
			MCodes:   st.MCodes.Sorted(),
		}
		res.EstimatedOutputLines += ncfile.LineCount(f.Content)
	}

	conflicting := remap.ConflictingTools(files)
	res.Conflicts = Conflicts{
		HasToolConflicts: len(conflicting) > 0,
		ConflictingTools: conflicting,
	}

	if opts.AddComments {
		res.EstimatedOutputLines += len(files)*perFileCommentLines + headerCommentLines
	}
	return res, nil
}

// MergePreview is a preview together with the merged program it describes.
type MergePreview struct {
	PreviewResult
	MergedContent string              `json:"mergedContent"`
	ToolMappings  []remap.ToolMapping `json:"toolMappings"`
}

// PreviewAndMerge runs Preview and Merge over the same input.
func PreviewAndMerge(files []ncfile.NCFile, opts Options) (MergePreview, error) {
	pv, err := Preview(files, opts)
	if err != nil {
		return MergePreview{}, err
	}
	res, err := Merge(files, opts)
	if err != nil {
		return MergePreview{}, err
	}
	return MergePreview{
		PreviewResult: pv,
		MergedContent: res.Content,
		ToolMappings:  res.ToolMappings,
	}, nil
}
