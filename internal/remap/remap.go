// Package remap renumbers T words so that tools from different programs do
// not collide once the programs are concatenated.
package remap

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
)

// ToolMapping records one renumbered tool.
type ToolMapping struct {
	Original  string `json:"original"`
	Remapped  string `json:"remapped"`
	FileIndex int    `json:"fileIndex"`
}

// FileResult is the rewritten content of one file plus the mappings applied
// to it, in rewrite order.
type FileResult struct {
	Content  string        `json:"content"`
	Mappings []ToolMapping `json:"mappings"`
}

// Result is the outcome of RemapMultipleFiles.
type Result struct {
	Files       []FileResult  `json:"files"`
	AllMappings []ToolMapping `json:"allMappings"`
}

var toolRe = regexp.MustCompile(`(?i)T(\d+)`)

// ToolSet holds the raw digit strings of T words. "01" and "1" are distinct.
type ToolSet map[string]struct{}

// ExtractTools collects the digits of every T word in content.
func ExtractTools(content string) ToolSet {
	set := ToolSet{}
	for _, tool := range orderedTools(content) {
		set[tool] = struct{}{}
	}
	return set
}

// orderedTools returns distinct tool digit strings in order of first
// appearance. Sorting is stable, so this order breaks ties between equal
// values such as "01" and "1".
func orderedTools(content string) []string {
	seen := map[string]bool{}
	var out []string
	for _, line := range ncfile.Lines(content) {
		for _, m := range toolRe.FindAllStringSubmatch(line, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				out = append(out, m[1])
			}
		}
	}
	return out
}

// compareNumeric orders digit strings by numeric value without overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

func sortAscending(tools []string) []string {
	out := append([]string(nil), tools...)
	sort.SliceStable(out, func(i, j int) bool { return compareNumeric(out[i], out[j]) < 0 })
	return out
}

func sortDescending(tools []string) []string {
	out := append([]string(nil), tools...)
	sort.SliceStable(out, func(i, j int) bool { return compareNumeric(out[i], out[j]) > 0 })
	return out
}

// pad formats n with at least width digits.
func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

type toolKey struct {
	file int
	tool string
}

// assignment is the accumulator threaded through the discovery fold.
type assignment struct {
	next     int
	byKey    map[toolKey]string
	mappings []ToolMapping
}

// assignFile numbers the tools of one file in ascending order, continuing
// from acc.next.
func assignFile(acc assignment, fileIndex int, tools []string) assignment {
	for _, tool := range sortAscending(tools) {
		key := toolKey{file: fileIndex, tool: tool}
		if _, ok := acc.byKey[key]; ok {
			continue
		}
		digits := pad(acc.next, len(tool))
		acc.byKey[key] = digits
		acc.mappings = append(acc.mappings, ToolMapping{
			Original:  "T" + tool,
			Remapped:  "T" + digits,
			FileIndex: fileIndex,
		})
		acc.next++
	}
	return acc
}

// replaceTool rewrites whole T<tool> words, ignoring case.
func replaceTool(content, tool, digits string) string {
	re := regexp.MustCompile(`(?i)\bT` + regexp.QuoteMeta(tool) + `\b`)
	return re.ReplaceAllLiteralString(content, "T"+digits)
}

// RemapMultipleFiles gives every (file, tool) pair a globally unique number,
// counting up from startNumber across files in input order. Replacements are
// zero-padded to the width of the original digits; a counter wider than that
// simply produces a longer word.
//
// Each file is rewritten one tool at a time from the highest original number
// down.
func RemapMultipleFiles(files []ncfile.NCFile, startNumber int) Result {
	perFile := make([][]string, len(files))
	for i, f := range files {
		perFile[i] = orderedTools(f.Content)
	}

	acc := assignment{next: startNumber, byKey: map[toolKey]string{}}
	for i := range files {
		acc = assignFile(acc, i, perFile[i])
	}

	results := make([]FileResult, len(files))
	for i, f := range files {
		content := f.Content
		mappings := []ToolMapping{}
		for _, tool := range sortDescending(perFile[i]) {
			digits, ok := acc.byKey[toolKey{file: i, tool: tool}]
			if !ok {
				continue
			}
			content = replaceTool(content, tool, digits)
			mappings = append(mappings, ToolMapping{
				Original:  "T" + tool,
				Remapped:  "T" + digits,
				FileIndex: i,
			})
		}
		results[i] = FileResult{Content: content, Mappings: mappings}
	}

	all := acc.mappings
	if all == nil {
		all = []ToolMapping{}
	}
	return Result{Files: results, AllMappings: all}
}

var toolWordRe = regexp.MustCompile(`(?i)\bT(\d+)\b`)

// RemapSingleFile applies an explicit original→new digit mapping to one
// program in a single pass, so "2=1,1=3" swaps rather than chains. Mappings
// are reported longest original first.
func RemapSingleFile(content string, mapping map[string]string) FileResult {
	originals := make([]string, 0, len(mapping))
	for orig := range mapping {
		originals = append(originals, orig)
	}
	sort.Slice(originals, func(i, j int) bool {
		if len(originals[i]) != len(originals[j]) {
			return len(originals[i]) > len(originals[j])
		}
		return originals[i] > originals[j]
	})

	res := FileResult{Content: content, Mappings: []ToolMapping{}}
	if len(mapping) == 0 {
		return res
	}
	res.Content = toolWordRe.ReplaceAllStringFunc(content, func(word string) string {
		if digits, ok := mapping[word[1:]]; ok {
			return "T" + digits
		}
		return word
	})
	for _, orig := range originals {
		res.Mappings = append(res.Mappings, ToolMapping{
			Original:  "T" + orig,
			Remapped:  "T" + mapping[orig],
			FileIndex: 0,
		})
	}
	return res
}

// HasConflicts reports whether any raw tool string appears in more than one
// file.
func HasConflicts(files []ncfile.NCFile) bool {
	return len(ConflictingTools(files)) > 0
}

// ConflictingTools lists, sorted, the T words whose digits appear in more
// than one file.
func ConflictingTools(files []ncfile.NCFile) []string {
	seen := map[string]bool{}
	conflicts := map[string]bool{}
	for _, f := range files {
		for tool := range ExtractTools(f.Content) {
			if seen[tool] {
				conflicts["T"+tool] = true
			}
			seen[tool] = true
		}
	}

	out := make([]string, 0, len(conflicts))
	for tool := range conflicts {
		out = append(out, tool)
	}
	sort.Strings(out)
	return out
}

// MappingTable renders mappings as a plain-text table.
func MappingTable(mappings []ToolMapping) string {
	if len(mappings) == 0 {
		return "No tool remapping required."
	}

	rule := strings.Repeat("─", 40) + "\n"
	var b strings.Builder
	b.WriteString("Tool Remapping:\n")
	b.WriteString(rule)
	b.WriteString("File | Original | New Tool\n")
	b.WriteString(rule)
	for _, m := range mappings {
		fmt.Fprintf(&b, "  %d  | %-8s | %s\n", m.FileIndex+1, m.Original, m.Remapped)
	}
	b.WriteString(rule)
	return b.String()
}
