package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nemooon/nc-file-merger/internal/merger"
	"github.com/nemooon/nc-file-merger/internal/remap"
	"github.com/nemooon/nc-file-merger/internal/templates"
	"github.com/nemooon/nc-file-merger/internal/validator"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Validation Report
// ============================================================================

// RenderValidation renders one file's validation result and statistics
func RenderValidation(filename string, res validator.Result, st validator.Stats) string {
	b := getBuilder()
	defer putBuilder(b)

	if res.Valid {
		b.WriteString(styles.OK.Render("✓ "))
	} else {
		b.WriteString(styles.Error.Render("✗ "))
	}
	b.WriteString(styles.Title.Render(filename))
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d lines, %d code, %d comment, %d empty",
		st.TotalLines, st.CodeLines, st.CommentLines, st.EmptyLines)))
	b.WriteString("\n")

	for _, is := range res.Errors {
		writeIssue(b, is, "error")
	}
	for _, is := range res.Warnings {
		writeIssue(b, is, "warning")
	}

	writeCodes(b, "G", st.GCodes.Sorted())
	writeCodes(b, "M", st.MCodes.Sorted())
	writeCodes(b, "T", st.Tools.Sorted())

	return b.String()
}

func writeIssue(b *strings.Builder, is validator.Issue, severity string) {
	style := styles.Warning
	if severity == "error" {
		style = styles.Error
	}
	b.WriteString(fmt.Sprintf("  line %-5d ", is.Line))
	b.WriteString(style.Render(fmt.Sprintf("%-7s %-16s", severity, is.Code)))
	b.WriteString(" ")
	b.WriteString(is.Message)
	b.WriteString("\n")
}

func writeCodes(b *strings.Builder, label string, codes []string) {
	if len(codes) == 0 {
		return
	}
	b.WriteString("  ")
	b.WriteString(styles.Accent.Render(label + ":"))
	b.WriteString(" ")
	b.WriteString(strings.Join(codes, " "))
	b.WriteString("\n")
}

// ============================================================================
// Preview Report
// ============================================================================

// RenderPreview renders per-file statistics, tool conflicts and the size estimate
func RenderPreview(pv merger.PreviewResult) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString(styles.Title.Render(fmt.Sprintf("%d files", len(pv.FileStats))))
	b.WriteString("\n")
	for i, fs := range pv.FileStats {
		b.WriteString(fmt.Sprintf("  %2d. %s", i+1, fs.Filename))
		b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d lines", fs.Lines)))
		if len(fs.Tools) > 0 {
			b.WriteString("  ")
			b.WriteString(styles.Accent.Render(strings.Join(fs.Tools, " ")))
		}
		b.WriteString("\n")
	}

	if pv.Conflicts.HasToolConflicts {
		b.WriteString(styles.Warning.Render("Tool conflicts: " + strings.Join(pv.Conflicts.ConflictingTools, ", ")))
	} else {
		b.WriteString(styles.OK.Render("No tool conflicts"))
	}
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("Estimated output: ~%d lines", pv.EstimatedOutputLines)))
	b.WriteString("\n")

	return b.String()
}

// ============================================================================
// Merge Report
// ============================================================================

// RenderMergeInfo renders merge statistics followed by the tool mapping table
func RenderMergeInfo(res merger.Result) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString(styles.Title.Render("Merged"))
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d files, %d lines, %d tools remapped",
		res.Stats.TotalFiles, res.Stats.TotalLines, res.Stats.ToolsRemapped)))
	b.WriteString("\n")
	b.WriteString(remap.MappingTable(res.ToolMappings))
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

// ============================================================================
// Template List
// ============================================================================

// RenderTemplates lists the available templates, marking the selected one
func RenderTemplates(all []templates.Template, selected string) string {
	b := getBuilder()
	defer putBuilder(b)

	writeTemplate(b, templates.None, "No header or footer", selected == templates.None || selected == "")
	for _, t := range all {
		writeTemplate(b, t.Name, t.Description, t.Name == selected)
	}
	return b.String()
}

func writeTemplate(b *strings.Builder, name, desc string, selected bool) {
	if selected {
		b.WriteString(styles.Cursor.Render("▶ "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(styles.Accent.Render(fmt.Sprintf("%-10s", name)))
	b.WriteString(" ")
	b.WriteString(styles.Dim.Render(desc))
	b.WriteString("\n")
}
