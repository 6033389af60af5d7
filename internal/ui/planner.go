package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nemooon/nc-file-merger/internal/merger"
	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/templates"
)

// Plan is what the planner hands back: the files in merge order and the
// options to merge them with.
type Plan struct {
	Files      []ncfile.NCFile
	Options    merger.Options
	Template   string
	OutputName string
}

// ============================================================================
// Key Bindings
// ============================================================================

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Remove   key.Binding
	Comments key.Binding
	Headers  key.Binding
	Remap    key.Binding
	Template key.Binding
	Rename   key.Binding
	Merge    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
	MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
	Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "drop")),
	Comments: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
	Headers:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "headers")),
	Remap:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "remap")),
	Template: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "template")),
	Rename:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "name")),
	Merge:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "merge")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.MoveUp, k.MoveDown, k.Remove, k.Comments, k.Headers, k.Remap, k.Template, k.Rename, k.Merge, k.Quit}
}

// ============================================================================
// Planner Model
// ============================================================================

// plannerModel lets the user order files and pick merge options before merging
type plannerModel struct {
	width  int
	height int

	files  []ncfile.NCFile
	cursor int
	offset int // viewport scroll offset

	opts          merger.Options
	store         *templates.Store
	templateNames []string
	templateIdx   int

	outputName string
	nameEdited bool
	nameInput  textinput.Model
	renaming   bool

	preview    merger.PreviewResult
	previewErr error

	done     bool
	quitting bool
}

// newPlannerModel creates a planner seeded with plan
func newPlannerModel(plan Plan, store *templates.Store) plannerModel {
	ti := textinput.New()
	ti.Prompt = "Output: "
	ti.Placeholder = "merged.nc"
	ti.CharLimit = 255
	ti.Width = 50

	m := plannerModel{
		files:         append([]ncfile.NCFile(nil), plan.Files...),
		opts:          plan.Options,
		store:         store,
		templateNames: store.Names(),
		nameInput:     ti,
		outputName:    plan.OutputName,
		nameEdited:    plan.OutputName != "",
	}
	for i, name := range m.templateNames {
		if name == plan.Template {
			m.templateIdx = i
		}
	}
	m.refresh()
	return m
}

// templateName returns the selected template
func (m plannerModel) templateName() string {
	return m.templateNames[m.templateIdx]
}

// refresh recomputes the preview and the suggested output name after any change
func (m *plannerModel) refresh() {
	m.opts.Template = m.store.ForMerge(m.templateName())
	m.preview, m.previewErr = merger.Preview(m.files, m.opts)
	if !m.nameEdited {
		m.outputName = ncfile.SuggestOutputName(ncfile.Names(m.files))
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.files)-1))
}

// Init implements tea.Model
func (m plannerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m plannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.nameInput.Width = msg.Width - 12
		return m, nil
	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

// updateRename handles input while the output name is being edited
func (m plannerModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if v := strings.TrimSpace(m.nameInput.Value()); v != "" {
			m.outputName = v
			m.nameEdited = true
		}
		m.renaming = false
		m.nameInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.renaming = false
		m.nameInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input while planning
func (m *plannerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, keys.Merge):
		if len(m.files) > 0 && m.previewErr == nil {
			m.done = true
			return tea.Quit
		}
	case key.Matches(msg, keys.Up):
		m.cursor = clamp(m.cursor-1, 0, max(0, len(m.files)-1))
	case key.Matches(msg, keys.Down):
		m.cursor = clamp(m.cursor+1, 0, max(0, len(m.files)-1))
	case key.Matches(msg, keys.MoveUp):
		m.swap(m.cursor, m.cursor-1)
	case key.Matches(msg, keys.MoveDown):
		m.swap(m.cursor, m.cursor+1)
	case key.Matches(msg, keys.Remove):
		if len(m.files) > 0 {
			m.files = append(m.files[:m.cursor], m.files[m.cursor+1:]...)
			m.refresh()
		}
	case key.Matches(msg, keys.Comments):
		m.opts.AddComments = !m.opts.AddComments
		m.refresh()
	case key.Matches(msg, keys.Headers):
		m.opts.PreserveHeaders = !m.opts.PreserveHeaders
		m.refresh()
	case key.Matches(msg, keys.Remap):
		m.opts.RemapTools = !m.opts.RemapTools
		m.refresh()
	case key.Matches(msg, keys.Template):
		m.templateIdx = (m.templateIdx + 1) % len(m.templateNames)
		m.refresh()
	case key.Matches(msg, keys.Rename):
		m.renaming = true
		m.nameInput.SetValue(m.outputName)
		m.nameInput.CursorEnd()
		return m.nameInput.Focus()
	}
	return nil
}

// swap exchanges two files and keeps the cursor on the moved one
func (m *plannerModel) swap(i, j int) {
	if i < 0 || j < 0 || i >= len(m.files) || j >= len(m.files) {
		return
	}
	m.files[i], m.files[j] = m.files[j], m.files[i]
	m.cursor = j
	m.refresh()
}

// plan returns the confirmed plan, or nil when the user quit
func (m plannerModel) plan() *Plan {
	if !m.done {
		return nil
	}
	return &Plan{
		Files:      m.files,
		Options:    m.opts,
		Template:   m.templateName(),
		OutputName: m.outputName,
	}
}

// ============================================================================
// Rendering
// ============================================================================

// View implements tea.Model
func (m plannerModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 80)
	height := maxInt(m.height, 24)

	options := m.renderOptions()
	details := m.renderDetails(width)
	bottom := m.renderBottom(width)

	listHeight := maxInt(height-countLines(options)-countLines(details)-countLines(bottom), 3)
	list := m.renderList(listHeight)
	padding := maxInt(listHeight-countLines(list), 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(options)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(details)
	b.WriteString(bottom)
	return b.String()
}

// renderOptions renders the option toggles and output name
func (m plannerModel) renderOptions() string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Title.Render("NC merge"))
	b.WriteString("  ")
	b.WriteString(toggle("comments", m.opts.AddComments))
	b.WriteString("  ")
	b.WriteString(toggle("headers", m.opts.PreserveHeaders))
	b.WriteString("  ")
	b.WriteString(toggle("remap", m.opts.RemapTools))
	b.WriteString("  ")
	b.WriteString(styles.Dim.Render("template "))
	b.WriteString(styles.Accent.Render(m.templateName()))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("output "))
	b.WriteString(m.outputName)
	b.WriteString("\n\n")
	return b.String()
}

func toggle(label string, on bool) string {
	if on {
		return styles.On.Render("[x] " + label)
	}
	return styles.Off.Render("[ ] " + label)
}

// renderList renders the ordered file list
func (m *plannerModel) renderList(maxHeight int) string {
	if len(m.files) == 0 {
		return styles.Warning.Render("  no files left to merge") + "\n"
	}

	start, end := scrollWindow(m.cursor, len(m.files), maxHeight, &m.offset)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow renders one file entry; the cursor row is highlighted across
// both the name and its line count.
func (m plannerModel) renderRow(i int) string {
	name := fmt.Sprintf("%2d. %s", i+1, m.files[i].Filename)
	var suffix string
	if i < len(m.preview.FileStats) {
		suffix = fmt.Sprintf("  (%d lines)", m.preview.FileStats[i].Lines)
	}
	if i != m.cursor {
		return "  " + name + styles.Dim.Render(suffix)
	}
	return styles.Cursor.Render("▶ ") +
		styles.Selected.Render(name) +
		styles.WithSelection(styles.Dim).Render(suffix)
}

// renderDetails renders the cursor file's codes plus merge-wide conflicts
func (m plannerModel) renderDetails(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if m.previewErr != nil {
		b.WriteString(styles.Error.Render(m.previewErr.Error()))
		b.WriteString("\n")
		return b.String()
	}

	if m.cursor < len(m.preview.FileStats) {
		fs := m.preview.FileStats[m.cursor]
		writeCodes(b, "G", fs.GCodes)
		writeCodes(b, "M", fs.MCodes)
		writeCodes(b, "T", fs.Tools)
	}

	if m.preview.Conflicts.HasToolConflicts {
		msg := "Tool conflicts: " + strings.Join(m.preview.Conflicts.ConflictingTools, ", ")
		if m.opts.RemapTools {
			b.WriteString(styles.OK.Render(msg + " (remapped)"))
		} else {
			b.WriteString(styles.Warning.Render(msg))
		}
	} else {
		b.WriteString(styles.OK.Render("No tool conflicts"))
	}
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  ~%d lines", m.preview.EstimatedOutputLines)))
	b.WriteString("\n")
	return b.String()
}

// renderBottom renders the help line or the name input
func (m plannerModel) renderBottom(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	if m.renaming {
		b.WriteString(m.nameInput.View())
		return b.String()
	}

	help := keys.help()
	parts := make([]string, 0, len(help))
	for _, h := range help {
		parts = append(parts, h.Help().Key+" "+h.Help().Desc)
	}
	b.WriteString(styles.Dim.Render(strings.Join(parts, " • ")))
	return b.String()
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty so the merged program can still be piped from stdout
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// RunPlanner launches the interactive planner. It returns nil when the user
// quits without merging.
func RunPlanner(plan Plan, store *templates.Store) (*Plan, error) {
	if len(plan.Files) == 0 {
		return nil, merger.ErrNoFiles
	}

	m := newPlannerModel(plan, store)

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // Refresh after getTTY sets up the renderer
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()

	if err != nil {
		return nil, err
	}
	return finalModel.(plannerModel).plan(), nil
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}
