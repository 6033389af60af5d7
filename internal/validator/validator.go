// Package validator classifies NC program lines, reports likely syntax
// problems and collects per-file statistics.
package validator

import (
	"regexp"
	"strings"

	"github.com/nemooon/nc-file-merger/internal/ncfile"
)

// Issue codes. Errors make a file invalid; warnings are advisory.
const (
	CodeUnmatchedParen  = "UNMATCHED_PAREN"
	CodeUnclosedParen   = "UNCLOSED_PAREN"
	CodePossiblyInvalid = "POSSIBLY_INVALID"
	CodeSpaceInCode     = "SPACE_IN_CODE"
	CodeNoCoordinates   = "NO_COORDINATES"
	CodeOrphanFeed      = "ORPHAN_FEED"
)

// Issue is one finding on a 1-based line.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Result holds the outcome of Validate.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Letters that fold to non-ASCII runes under (?i) are spelled out as classes.
var (
	gmCodeRe     = regexp.MustCompile(`(?i)[GM]\d+`)
	coordinateRe = regexp.MustCompile(`[XYZABCUVWIJKxyzabcuvwijk]-?\d+\.?\d*`)
	tCodeRe      = regexp.MustCompile(`(?i)T\d+`)
	sCodeRe      = regexp.MustCompile(`[Ss]\d+`)
	fCodeRe      = regexp.MustCompile(`(?i)F\d+\.?\d*`)
	oCodeRe      = regexp.MustCompile(`(?i)O\d+`)
	nCodeRe      = regexp.MustCompile(`(?i)N\d+`)
	spacedCodeRe = regexp.MustCompile(`[GMgm]` + ncfile.SpaceClass + `+\d+`)
	motionRe     = regexp.MustCompile(`(?i)G0?[0-3]\b`)
)

// IsValidNCFile reports whether content contains at least one G or M code.
// It is the admission check used before merging.
func IsValidNCFile(content string) bool {
	return gmCodeRe.MatchString(content)
}

// lineFeatures records which kinds of words appear on a line.
type lineFeatures struct {
	gm, coordinate, t, s, f, o, n, percent bool
}

func detect(line string) lineFeatures {
	return lineFeatures{
		gm:         gmCodeRe.MatchString(line),
		coordinate: coordinateRe.MatchString(line),
		t:          tCodeRe.MatchString(line),
		s:          sCodeRe.MatchString(line),
		f:          fCodeRe.MatchString(line),
		o:          oCodeRe.MatchString(line),
		n:          nCodeRe.MatchString(line),
		percent:    line == "%",
	}
}

func (lf lineFeatures) any() bool {
	return lf.gm || lf.coordinate || lf.t || lf.s || lf.f || lf.o || lf.n || lf.percent
}

// isPureComment reports lines that carry no code at all.
func isPureComment(line string) bool {
	if strings.HasPrefix(line, ";") {
		return true
	}
	return strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")")
}

// Validate runs a single pass over content. Parenthesis depth is the only
// state carried between lines; every other check is line-local.
func Validate(content string) Result {
	lines := ncfile.Lines(content)
	res := Result{Errors: []Issue{}, Warnings: []Issue{}}
	depth := 0

	for i, raw := range lines {
		lineNum := i + 1
		line := ncfile.Trim(raw)
		if line == "" {
			continue
		}

		for _, ch := range line {
			switch ch {
			case '(':
				depth++
			case ')':
				depth--
				if depth < 0 {
					res.Errors = append(res.Errors, Issue{
						Line:    lineNum,
						Message: "Unmatched closing parenthesis",
						Code:    CodeUnmatchedParen,
					})
				}
			}
		}

		if isPureComment(line) {
			continue
		}

		lf := detect(line)

		if !lf.any() && !strings.HasPrefix(line, "(") {
			res.Warnings = append(res.Warnings, Issue{
				Line:    lineNum,
				Message: "Line may not contain valid G-code",
				Code:    CodePossiblyInvalid,
			})
		}

		if spacedCodeRe.MatchString(line) {
			res.Warnings = append(res.Warnings, Issue{
				Line:    lineNum,
				Message: `Space detected between G/M and number (e.g., "G 01" should be "G01")`,
				Code:    CodeSpaceInCode,
			})
		}

		if motionRe.MatchString(line) && !lf.coordinate {
			res.Warnings = append(res.Warnings, Issue{
				Line:    lineNum,
				Message: "Movement command without coordinates",
				Code:    CodeNoCoordinates,
			})
		}

		if lf.f && !lf.gm && lineNum > 1 {
			res.Warnings = append(res.Warnings, Issue{
				Line:    lineNum,
				Message: "Feed rate (F) specified without G-code command",
				Code:    CodeOrphanFeed,
			})
		}
	}

	if depth != 0 {
		res.Errors = append(res.Errors, Issue{
			Line:    len(lines),
			Message: "Unclosed parenthesis at end of file",
			Code:    CodeUnclosedParen,
		})
	}

	res.Valid = len(res.Errors) == 0
	return res
}
