package merger

import "regexp"

// Action is what the merger does with one trimmed input line.
type Action uint8

const (
	// Skip drops the line.
	Skip Action = iota
	// Emit copies the line to the output.
	Emit
	// EmitWithComment copies the line preceded by a note naming its source.
	EmitWithComment
)

func (a Action) String() string {
	switch a {
	case Emit:
		return "emit"
	case EmitWithComment:
		return "emit-with-comment"
	default:
		return "skip"
	}
}

// position locates a line within the merge.
type position struct {
	fileIndex int
	lineIndex int
	lastFile  bool
	// endEmitted is set once a program end has been written.
	endEmitted bool
}

func (p position) firstFile() bool { return p.fileIndex == 0 }

// lineRule pairs a pattern with the decision it makes for matching lines.
type lineRule struct {
	name    string
	matches func(line string) bool
	decide  func(pos position, opts Options) Action
}

var (
	programNumberRe = regexp.MustCompile(`^[Oo]\d+`)
	programEndRe    = regexp.MustCompile(`(?:^|[^A-Za-z])[Mm](?:30|02)(?:[^0-9]|$)`)
	programStopRe   = regexp.MustCompile(`(?:^|[^A-Za-z])[Mm]00(?:[^0-9]|$)`)
	commentRe       = regexp.MustCompile(`\([^)]*\)?`)
)

// code returns line with parenthesised comments blanked out.
func code(line string) string {
	return commentRe.ReplaceAllString(line, " ")
}

// isProgramEnd reports lines carrying an M30 or M02 word anywhere outside
// comments, so "N20 M30" ends the program too.
func isProgramEnd(line string) bool {
	return programEndRe.MatchString(code(line))
}

func isProgramStop(line string) bool {
	return programStopRe.MatchString(code(line))
}

// lineRules is evaluated top to bottom; the first matching rule decides.
var lineRules = []lineRule{
	{
		name:    "tape-marker",
		matches: func(line string) bool { return line == "%" },
		decide: func(pos position, opts Options) Action {
			if opts.PreserveHeaders && pos.firstFile() && pos.lineIndex == 0 {
				return Emit
			}
			return Skip
		},
	},
	{
		name:    "program-number",
		matches: programNumberRe.MatchString,
		decide: func(pos position, opts Options) Action {
			if opts.PreserveHeaders && pos.firstFile() {
				return Emit
			}
			return Skip
		},
	},
	{
		name:    "program-end",
		matches: isProgramEnd,
		decide: func(pos position, _ Options) Action {
			if pos.lastFile && !pos.endEmitted {
				return Emit
			}
			return Skip
		},
	},
	{
		name:    "program-stop",
		matches: isProgramStop,
		decide: func(_ position, opts Options) Action {
			if opts.AddComments {
				return EmitWithComment
			}
			return Emit
		},
	},
	{
		name:    "blank",
		matches: func(line string) bool { return line == "" },
		decide:  func(position, Options) Action { return Skip },
	},
}

// classify applies lineRules to a trimmed line. Lines no rule claims are
// emitted unchanged.
func classify(line string, pos position, opts Options) Action {
	for _, r := range lineRules {
		if r.matches(line) {
			return r.decide(pos, opts)
		}
	}
	return Emit
}
