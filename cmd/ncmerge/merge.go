package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nemooon/nc-file-merger/internal/merger"
	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/ui"
	"github.com/nemooon/nc-file-merger/internal/validator"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <files...>",
	Short: "Merge programs without the interactive planner",
	Long: `Merge programs in the order given.

Examples:
  ncmerge merge op10.nc op20.nc op30.nc > job.nc
  ncmerge merge --remap-tools --template fanuc --out job.nc ops/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

var validateCmd = &cobra.Command{
	Use:   "validate <files...>",
	Short: "Check programs for common syntax problems",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var previewCmd = &cobra.Command{
	Use:   "preview <files...>",
	Short: "Show what a merge would combine",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPreview,
}

func init() {
	mergeCmd.Flags().Bool("info", false, "Print merge statistics and tool mappings to stderr")
	validateCmd.Flags().Bool("json", false, "Print results as JSON")
	previewCmd.Flags().Bool("json", false, "Print the preview and merged program as JSON")
}

func runMerge(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(cmd.Context(), args)
	if err != nil {
		return err
	}
	store, err := loadStore()
	if err != nil {
		return err
	}
	opts, err := mergeOptions(store)
	if err != nil {
		return err
	}

	res, err := merger.Merge(files, opts)
	if err != nil {
		return err
	}
	if err := deliver(res.Content, ncfile.SuggestOutputName(ncfile.Names(files))); err != nil {
		return err
	}

	if info, _ := cmd.Flags().GetBool("info"); info {
		fmt.Fprint(os.Stderr, ui.RenderMergeInfo(res))
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	invalid := 0
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		reports := make([]validator.Report, len(files))
		for i, f := range files {
			reports[i] = validator.NewReport(f.Filename, f.Content)
			if !reports[i].Validation.Valid {
				invalid++
			}
		}
		if err := writeJSON(map[string]any{"results": reports}); err != nil {
			return err
		}
	} else {
		for _, f := range files {
			res := validator.Validate(f.Content)
			if !res.Valid {
				invalid++
			}
			fmt.Print(ui.RenderValidation(f.Filename, res, validator.GetStats(f.Content)))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files invalid", invalid, len(files))
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(cmd.Context(), args)
	if err != nil {
		return err
	}
	store, err := loadStore()
	if err != nil {
		return err
	}
	opts, err := mergeOptions(store)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		pv, err := merger.PreviewAndMerge(files, opts)
		if err != nil {
			return err
		}
		return writeJSON(pv)
	}

	pv, err := merger.Preview(files, opts)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderPreview(pv))
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
