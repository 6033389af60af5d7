package validator

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
)

// Set is an unordered collection of code words such as "G01" or "T5".
type Set map[string]struct{}

// Add inserts s.
func (s Set) Add(v string) { s[v] = struct{}{} }

// Has reports membership.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending string order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Stats summarises one program.
type Stats struct {
	TotalLines   int
	CodeLines    int
	CommentLines int
	EmptyLines   int
	GCodes       Set
	MCodes       Set
	Tools        Set
}

// Summary is Stats with its sets flattened to sorted arrays, ready for
// encoding.
type Summary struct {
	TotalLines   int      `json:"totalLines"`
	CodeLines    int      `json:"codeLines"`
	CommentLines int      `json:"commentLines"`
	EmptyLines   int      `json:"emptyLines"`
	GCodes       []string `json:"gCodes"`
	MCodes       []string `json:"mCodes"`
	Tools        []string `json:"tools"`
}

// Summary flattens st.
func (st Stats) Summary() Summary {
	return Summary{
		TotalLines:   st.TotalLines,
		CodeLines:    st.CodeLines,
		CommentLines: st.CommentLines,
		EmptyLines:   st.EmptyLines,
		GCodes:       st.GCodes.Sorted(),
		MCodes:       st.MCodes.Sorted(),
		Tools:        st.Tools.Sorted(),
	}
}

// Report is the validation result and statistics of one named file.
type Report struct {
	Filename   string  `json:"filename"`
	Validation Result  `json:"validation"`
	Stats      Summary `json:"stats"`
}

// NewReport validates content and collects its statistics.
func NewReport(filename, content string) Report {
	return Report{
		Filename:   filename,
		Validation: Validate(content),
		Stats:      GetStats(content).Summary(),
	}
}

var (
	gWordRe = regexp.MustCompile(`(?i)G(\d+)`)
	mWordRe = regexp.MustCompile(`(?i)M(\d+)`)
	tWordRe = regexp.MustCompile(`(?i)T(\d+)`)
)

// GetStats counts blank, comment and code lines and collects the distinct
// G, M and T words found on code lines. Words keep their digits exactly as
// written, so G1 and G01 are distinct.
func GetStats(content string) Stats {
	lines := ncfile.Lines(content)
	st := Stats{
		TotalLines: len(lines),
		GCodes:     Set{},
		MCodes:     Set{},
		Tools:      Set{},
	}

	for _, raw := range lines {
		line := ncfile.Trim(raw)

		if line == "" {
			st.EmptyLines++
			continue
		}
		if strings.HasPrefix(line, "(") || strings.HasPrefix(line, ";") {
			st.CommentLines++
			continue
		}

		st.CodeLines++
		collect(st.GCodes, gWordRe, "G", line)
		collect(st.MCodes, mWordRe, "M", line)
		collect(st.Tools, tWordRe, "T", line)
	}

	return st
}

func collect(set Set, re *regexp.Regexp, letter, line string) {
	for _, m := range re.FindAllStringSubmatch(line, -1) {
		set.Add(letter + m[1])
	}
}
