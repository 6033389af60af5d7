package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := c.findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		_, err := fmt.Fprintln(c.fallback, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func (c *systemClipboard) findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Writer
// ============================================================================

// Mode represents where a merged program goes
type Mode string

const (
	ModePrint Mode = "print"
	ModeFile  Mode = "file"
	ModeCopy  Mode = "copy"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePrint, ModeFile, ModeCopy:
		return m, nil
	case "":
		return ModePrint, nil
	default:
		return "", fmt.Errorf("unsupported output mode: %s (supported: print, file, copy)", s)
	}
}

// Writer delivers merged programs
type Writer struct {
	stdout    io.Writer
	clipboard Clipboard
	logger    *zap.Logger
}

// NewWriter creates a writer printing to stdout
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		stdout:    os.Stdout,
		clipboard: &systemClipboard{fallback: os.Stdout},
		logger:    logger,
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// WithStdout sets where print mode writes
func (w *Writer) WithStdout(out io.Writer) *Writer {
	w.stdout = out
	return w
}

// Write delivers content according to mode. path is only used by file mode.
func (w *Writer) Write(content string, mode Mode, path string) error {
	switch mode {
	case ModeFile:
		if path == "" {
			return fmt.Errorf("file output needs a path")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(ensureTrailingNewline(content)), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		w.logger.Info("wrote merged program", zap.String("path", path), zap.Int("bytes", len(content)))
		return nil
	case ModeCopy:
		if err := w.clipboard.Copy(content); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		w.logger.Info("copied merged program to clipboard", zap.Int("bytes", len(content)))
		return nil
	default: // print
		_, err := io.WriteString(w.stdout, ensureTrailingNewline(content))
		return err
	}
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
