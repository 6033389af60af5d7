package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nemooon/nc-file-merger/internal/config"
	"github.com/nemooon/nc-file-merger/internal/server"
	"github.com/nemooon/nc-file-merger/internal/ui"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List header/footer templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore()
		if err != nil {
			return err
		}
		fmt.Print(ui.RenderTemplates(store.All(), config.GetTemplate()))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the merge API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		MaxUploadBytes: config.GetMaxUploadBytes(),
		CacheSize:      config.GetCacheSize(),
		Version:        version,
	}, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, config.GetServerAddr())
}
