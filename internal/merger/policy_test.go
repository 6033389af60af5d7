package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	first := position{fileIndex: 0, lineIndex: 0}
	firstLater := position{fileIndex: 0, lineIndex: 3}
	middle := position{fileIndex: 1, lineIndex: 0}
	last := position{fileIndex: 2, lineIndex: 5, lastFile: true}
	lastDone := position{fileIndex: 2, lineIndex: 9, lastFile: true, endEmitted: true}

	headers := Options{PreserveHeaders: true}
	comments := Options{AddComments: true}

	tests := []struct {
		name     string
		line     string
		pos      position
		opts     Options
		expected Action
	}{
		{name: "leading tape marker kept with headers", line: "%", pos: first, opts: headers, expected: Emit},
		{name: "leading tape marker dropped without headers", line: "%", pos: first, opts: Options{}, expected: Skip},
		{name: "later tape marker dropped", line: "%", pos: firstLater, opts: headers, expected: Skip},
		{name: "program number kept in first file", line: "O1000", pos: firstLater, opts: headers, expected: Emit},
		{name: "program number dropped in later file", line: "o2000", pos: middle, opts: headers, expected: Skip},
		{name: "program number dropped without headers", line: "O1000", pos: first, opts: Options{}, expected: Skip},
		{name: "end dropped before last file", line: "M30", pos: middle, opts: Options{}, expected: Skip},
		{name: "end kept in last file", line: "M02", pos: last, opts: Options{}, expected: Emit},
		{name: "second end in last file dropped", line: "M30", pos: lastDone, opts: Options{}, expected: Skip},
		{name: "stop annotated with comments", line: "M00", pos: middle, opts: comments, expected: EmitWithComment},
		{name: "stop kept without comments", line: "m00", pos: middle, opts: Options{}, expected: Emit},
		{name: "blank dropped", line: "", pos: middle, opts: comments, expected: Skip},
		{name: "code kept", line: "G01 X1 Y2", pos: middle, opts: Options{}, expected: Emit},
		{name: "numbered end dropped before last file", line: "N10 M30", pos: middle, opts: Options{}, expected: Skip},
		{name: "numbered end kept in last file", line: "N20 m02", pos: last, opts: Options{}, expected: Emit},
		{name: "end after other words dropped", line: "G00 Z50 M30", pos: middle, opts: Options{}, expected: Skip},
		{name: "end in comment is plain code", line: "G01 X1 (M30 follows)", pos: middle, opts: Options{}, expected: Emit},
		{name: "unspaced end dropped before last file", line: "N20M30", pos: middle, opts: Options{}, expected: Skip},
		{name: "longer M word is plain code", line: "N10 M300", pos: middle, opts: Options{}, expected: Emit},
		{name: "numbered stop annotated", line: "N30 M00", pos: middle, opts: comments, expected: EmitWithComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.line, tt.pos, tt.opts))
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "emit", Emit.String())
	assert.Equal(t, "emit-with-comment", EmitWithComment.String())
}
