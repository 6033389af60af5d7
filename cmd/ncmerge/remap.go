package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemooon/nc-file-merger/internal/config"
	"github.com/nemooon/nc-file-merger/internal/remap"
)

var remapCmd = &cobra.Command{
	Use:   "remap <files...>",
	Short: "Renumber tools without merging",
	Long: `Renumber tools so that no two files share a tool number.

With --map, one file is rewritten using explicit numbers instead:
  ncmerge remap --map 12=1,5=2 op10.nc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemap,
}

var toolDigitsRe = regexp.MustCompile(`^\d+$`)

func init() {
	remapCmd.Flags().Int("start", 0, "First tool number (default tool_start)")
	remapCmd.Flags().StringToString("map", nil, "Explicit mapping original=new for a single file")
	remapCmd.Flags().String("out-dir", "", "Write remapped files into this directory")
}

func runRemap(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	explicit, _ := cmd.Flags().GetStringToString("map")
	var results []remap.FileResult
	var mappings []remap.ToolMapping

	if len(explicit) > 0 {
		if len(files) != 1 {
			return fmt.Errorf("--map applies to exactly one file, got %d", len(files))
		}
		mapping, err := parseToolMap(explicit)
		if err != nil {
			return err
		}
		fr := remap.RemapSingleFile(files[0].Content, mapping)
		results = []remap.FileResult{fr}
		mappings = fr.Mappings
	} else {
		start, _ := cmd.Flags().GetInt("start")
		if start <= 0 {
			start = config.GetToolStart()
		}
		res := remap.RemapMultipleFiles(files, start)
		results = res.Files
		mappings = res.AllMappings
	}

	fmt.Fprintln(os.Stderr, remap.MappingTable(mappings))

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	for i, fr := range results {
		if outDir != "" {
			path := filepath.Join(outDir, filepath.Base(files[i].Filename))
			if err := os.WriteFile(path, []byte(fr.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			logger.Info("wrote remapped program", zap.String("path", path), zap.Int("tools", len(fr.Mappings)))
			continue
		}
		if len(results) > 1 {
			fmt.Printf("(==== %s ====)\n", files[i].Filename)
		}
		fmt.Println(fr.Content)
	}
	return nil
}

// parseToolMap normalises "T12"/"12" keys and values to bare digits
func parseToolMap(raw map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		from := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(k)), "T")
		to := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(v)), "T")
		if !toolDigitsRe.MatchString(from) || !toolDigitsRe.MatchString(to) {
			return nil, fmt.Errorf("invalid tool mapping %s=%s", k, v)
		}
		out[from] = to
	}
	return out, nil
}
