// Package merger concatenates NC programs into one, dropping the per-program
// framing (tape markers, program numbers, program ends) that must not repeat.
package merger

import (
	"fmt"
	"strings"
	"time"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/remap"
	"github.com/nemooon/nc-file-merger/internal/validator"
)

// Template is literal text placed before and after the merged body.
type Template struct {
	Header string `json:"header,omitempty" yaml:"header"`
	Footer string `json:"footer,omitempty" yaml:"footer"`
}

// Options controls a merge.
type Options struct {
	AddComments     bool
	PreserveHeaders bool
	RemapTools      bool
	Template        *Template
	// ToolStart is the first number handed out when remapping; 0 means 1.
	ToolStart int
}

// Stats summarises a merge.
type Stats struct {
	TotalFiles    int `json:"totalFiles"`
	TotalLines    int `json:"totalLines"`
	ToolsRemapped int `json:"toolsRemapped"`
}

// Result is the merged program plus what was done to produce it.
type Result struct {
	Content      string              `json:"content"`
	ToolMappings []remap.ToolMapping `json:"toolMappings"`
	Stats        Stats               `json:"stats"`
}

const (
	bannerRule      = "(====================================)"
	endOfProgram    = "M30"
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// now is replaced in tests.
var now = time.Now

// checkInput rejects an empty batch or any file that is not an NC program.
func checkInput(files []ncfile.NCFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	for _, f := range files {
		if !validator.IsValidNCFile(f.Content) {
			return &InvalidFileError{Filename: f.Filename}
		}
	}
	return nil
}

// program accumulates output lines.
type program struct {
	lines      []string
	endEmitted bool
}

func (p *program) push(lines ...string) {
	p.lines = append(p.lines, lines...)
}

// blank adds an empty line unless nothing has been written yet.
func (p *program) blank() {
	if len(p.lines) > 0 {
		p.lines = append(p.lines, "")
	}
}

func (p *program) banner(text string) {
	p.blank()
	p.push(bannerRule, text, bannerRule)
	p.blank()
}

// Merge combines files, in order, into a single program. It fails without
// producing output if files is empty or any file is not an NC program.
func Merge(files []ncfile.NCFile, opts Options) (Result, error) {
	if err := checkInput(files); err != nil {
		return Result{}, err
	}

	processed := files
	mappings := []remap.ToolMapping{}
	if opts.RemapTools {
		start := opts.ToolStart
		if start <= 0 {
			start = 1
		}
		rr := remap.RemapMultipleFiles(files, start)
		processed = make([]ncfile.NCFile, len(files))
		for i, fr := range rr.Files {
			processed[i] = ncfile.NCFile{Filename: files[i].Filename, Content: fr.Content}
		}
		mappings = rr.AllMappings
	}

	var out program

	if opts.Template != nil && opts.Template.Header != "" {
		out.push(opts.Template.Header)
		out.blank()
	}

	if opts.AddComments {
		out.push(
			bannerRule,
			"(NC File Merger - Merged Output)",
			fmt.Sprintf("(Total Files: %d)", len(files)),
			fmt.Sprintf("(Generated: %s)", now().UTC().Format(timestampLayout)),
		)
		if len(mappings) > 0 {
			out.push(fmt.Sprintf("(Tools Remapped: %d)", len(mappings)))
		}
		out.push(bannerRule)
		out.blank()
	}

	totalLines := 0
	for fi, f := range processed {
		if opts.AddComments {
			out.banner(fmt.Sprintf("(File %d: %s)", fi+1, f.Filename))
		}

		lines := ncfile.Lines(f.Content)
		totalLines += len(lines)

		for li, raw := range lines {
			line := ncfile.Trim(raw)
			pos := position{
				fileIndex:  fi,
				lineIndex:  li,
				lastFile:   fi == len(processed)-1,
				endEmitted: out.endEmitted,
			}

			switch classify(line, pos, opts) {
			case Emit:
				out.push(line)
			case EmitWithComment:
				out.push(fmt.Sprintf("(Program stop from %s)", f.Filename), line)
			default:
				continue
			}
			if isProgramEnd(line) {
				out.endEmitted = true
			}
		}
	}

	if len(mappings) > 0 && opts.AddComments {
		writeMappingTable(&out, mappings, files)
	}

	if !out.endEmitted {
		out.push(endOfProgram)
	}

	if opts.Template != nil && opts.Template.Footer != "" {
		out.blank()
		out.push(opts.Template.Footer)
	}

	if opts.PreserveHeaders {
		out.push("%")
	}

	return Result{
		Content:      strings.Join(out.lines, "\n"),
		ToolMappings: mappings,
		Stats: Stats{
			TotalFiles:    len(files),
			TotalLines:    totalLines,
			ToolsRemapped: len(mappings),
		},
	}, nil
}

// writeMappingTable appends the remapping as a comment block grouped by
// source file.
func writeMappingTable(out *program, mappings []remap.ToolMapping, files []ncfile.NCFile) {
	var order []int
	byFile := map[int][]remap.ToolMapping{}
	for _, m := range mappings {
		if _, ok := byFile[m.FileIndex]; !ok {
			order = append(order, m.FileIndex)
		}
		byFile[m.FileIndex] = append(byFile[m.FileIndex], m)
	}

	out.blank()
	out.push(bannerRule, "(Tool Remapping Table)", bannerRule)
	for _, fi := range order {
		out.push(fmt.Sprintf("(File %d: %s)", fi+1, files[fi].Filename))
		for _, m := range byFile[fi] {
			out.push(fmt.Sprintf("(  %s -> %s)", m.Original, m.Remapped))
		}
	}
	out.push(bannerRule)
	out.blank()
}
