package ncfile

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NCFile is one input program: its display name and raw text.
type NCFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// New builds an NCFile, coercing content to valid UTF-8.
func New(filename string, data []byte) NCFile {
	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}
	return NCFile{Filename: filename, Content: content}
}

// Lines splits content on newlines without dropping the trailing empty element,
// so "G01\n" has two lines.
func Lines(content string) []string {
	return strings.Split(content, "\n")
}

// LineCount returns len(Lines(content)) without allocating.
func LineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

// SpaceClass is a regexp character class of the runes Trim strips: Unicode
// space separators, line terminators and the byte order mark. U+0085 is not
// included.
const SpaceClass = `[\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

// IsSpace reports whether r is in SpaceClass.
func IsSpace(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\uFEFF':
		return true
	}
	return unicode.IsSpace(r)
}

// Trim strips surrounding whitespace and any byte order mark.
func Trim(line string) string {
	return strings.TrimFunc(line, IsSpace)
}

// Names returns the filenames of files in order.
func Names(files []NCFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	return names
}

var (
	ncExtRe        = regexp.MustCompile(`(?i)\.nc$`)
	trailingSepRe  = regexp.MustCompile(`[-_\s\d]+$`)
	baseNameRe     = regexp.MustCompile(`^(.+?)[-_]?\d*$`)
	defaultOutName = "merged.nc"
)

// SuggestOutputName proposes a filename for the merged program based on the
// input names: a shared prefix when there is a meaningful one, otherwise the
// first name with its trailing sequence number removed.
func SuggestOutputName(names []string) string {
	if len(names) == 0 {
		return defaultOutName
	}

	bases := make([]string, len(names))
	for i, name := range names {
		bases[i] = ncExtRe.ReplaceAllString(filepath.Base(name), "")
	}
	if len(bases) == 1 {
		return bases[0] + "_merged.nc"
	}

	if prefix := commonPrefix(bases); len(prefix) > 2 {
		return prefix + "_merged.nc"
	}

	if m := baseNameRe.FindStringSubmatch(bases[0]); m != nil && m[1] != "" {
		return m[1] + "_merged.nc"
	}
	return defaultOutName
}

// commonPrefix returns the prefix shared by all names with trailing
// separators and digits trimmed.
func commonPrefix(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]

	i := 0
	for i < len(first) && i < len(last) && first[i] == last[i] {
		i++
	}
	return trailingSepRe.ReplaceAllString(first[:i], "")
}
