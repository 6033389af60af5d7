package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nemooon/nc-file-merger/internal/config"
	"github.com/nemooon/nc-file-merger/internal/logging"
	"github.com/nemooon/nc-file-merger/internal/merger"
	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/output"
	"github.com/nemooon/nc-file-merger/internal/templates"
	"github.com/nemooon/nc-file-merger/internal/ui"
)

var version = "0.3.0"

// logger is built once flags and config are known
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "ncmerge [files...]",
	Short: "Merge CNC programs into one",
	Long: `Combine several NC/G-code programs into a single program.

With files given, an interactive planner lets you reorder them,
toggle merge options and pick a template before merging.
Directories are expanded to the program files they contain.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runPlanner,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(mergeCmd, validateCmd, previewCmd, remapCmd, templatesCmd, serveCmd)

	pf := rootCmd.PersistentFlags()
	pf.Bool("comments", true, "Add banner comments to the merged program")
	pf.Bool("preserve-headers", false, "Keep the first file's % marker and program number")
	pf.Bool("remap-tools", false, "Give every file's tools unique numbers")
	pf.Int("tool-start", 1, "First tool number handed out when remapping")
	pf.StringP("template", "t", "", "Header/footer template (see 'ncmerge templates')")
	pf.String("templates-file", "", "YAML file with additional templates")
	pf.StringP("output", "o", "", "Output mode: print, file, copy")
	pf.String("out", "", "Output file path (implies -o file)")
	pf.Int("jobs", 0, "Files read concurrently")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: console, json")

	viper.BindPFlag("add_comments", pf.Lookup("comments"))
	viper.BindPFlag("preserve_headers", pf.Lookup("preserve-headers"))
	viper.BindPFlag("remap_tools", pf.Lookup("remap-tools"))
	viper.BindPFlag("tool_start", pf.Lookup("tool-start"))
	viper.BindPFlag("templates_file", pf.Lookup("templates-file"))
	viper.BindPFlag("load.jobs", pf.Lookup("jobs"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// setup applies string flags that only override config when set, then
// builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if t, _ := flags.GetString("template"); t != "" {
		config.SetTemplate(t)
	}
	if o, _ := flags.GetString("output"); o != "" {
		config.SetOutput(o)
	}
	if out, _ := flags.GetString("out"); out != "" {
		viper.Set("output_file", out)
		if o, _ := flags.GetString("output"); o == "" {
			config.SetOutput(string(output.ModeFile))
		}
	}
	if l, _ := flags.GetString("log-level"); l != "" {
		viper.Set("log.level", l)
	}
	if f, _ := flags.GetString("log-format"); f != "" {
		viper.Set("log.format", f)
	}

	l, err := logging.New(config.GetLogLevel(), config.GetLogFormat())
	if err != nil {
		return err
	}
	logger = l
	ui.RefreshStyles()
	return nil
}

// ============================================================================
// Shared helpers
// ============================================================================

// loadFiles reads the program files named on the command line
func loadFiles(ctx context.Context, paths []string) ([]ncfile.NCFile, error) {
	files, err := ncfile.NewLoader(config.GetLoadJobs(), logger).Load(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, merger.ErrNoFiles
	}
	return files, nil
}

// loadStore returns the built-in templates plus any from the templates file
func loadStore() (*templates.Store, error) {
	store := templates.NewStore()
	if path := config.GetTemplatesFile(); path != "" {
		if err := store.LoadFile(path); err != nil {
			return nil, err
		}
		logger.Debug("loaded templates", zap.String("path", path))
	}
	return store, nil
}

// mergeOptions builds merge options from flags and config
func mergeOptions(store *templates.Store) (merger.Options, error) {
	name := config.GetTemplate()
	if name != "" && name != templates.None {
		if _, ok := store.Get(name); !ok {
			return merger.Options{}, fmt.Errorf("unknown template: %s (see 'ncmerge templates')", name)
		}
	}
	return merger.Options{
		AddComments:     config.GetAddComments(),
		PreserveHeaders: config.GetPreserveHeaders(),
		RemapTools:      config.GetRemapTools(),
		Template:        store.ForMerge(name),
		ToolStart:       config.GetToolStart(),
	}, nil
}

// deliver sends a merged program to the configured output. File mode falls
// back to fallbackName when no output file is configured.
func deliver(content, fallbackName string) error {
	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}
	path := config.GetOutputFile()
	if path == "" {
		path = fallbackName
	}
	return output.NewWriter(logger).Write(content, mode, path)
}

// ============================================================================
// Planner
// ============================================================================

func runPlanner(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

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

	var outName string
	if out := config.GetOutputFile(); out != "" {
		outName = filepath.Base(out)
	}

	plan, err := ui.RunPlanner(ui.Plan{
		Files:      files,
		Options:    opts,
		Template:   config.GetTemplate(),
		OutputName: outName,
	}, store)
	if err != nil {
		return err
	}
	if plan == nil {
		return nil
	}

	res, err := merger.Merge(plan.Files, plan.Options)
	if err != nil {
		return err
	}

	// The planner picks a file name, so it writes a file unless told otherwise
	if !cmd.Flags().Changed("output") {
		config.SetOutput(string(output.ModeFile))
	}
	path := plan.OutputName
	if dir := filepath.Dir(config.GetOutputFile()); config.GetOutputFile() != "" && dir != "." {
		path = filepath.Join(dir, plan.OutputName)
	}
	viper.Set("output_file", path)
	if err := deliver(res.Content, path); err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, ui.RenderMergeInfo(res))
	return nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
