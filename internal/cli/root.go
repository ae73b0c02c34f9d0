// Package cli implements the neoncv command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"neoncv/internal/adapter/repository"
	"neoncv/internal/config"
	"neoncv/internal/download"
	"neoncv/internal/usecase"
	"neoncv/pkg/infrastructure"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// runtime is shared by all subcommands of one invocation.
type runtime struct {
	v          *viper.Viper
	configFile string
	settings   Settings
	history    *repository.SQLiteJobsRepo
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{v: viper.New()}

	root := &cobra.Command{
		Use:           "neoncv",
		Short:         "Export CV documents to PDF, DOCX, PNG and JSON",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(rt.v, rt.configFile)
			if err != nil {
				return err
			}
			rt.settings = s
			lvl, err := config.ParseLevel(s.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.history.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.configFile, "config", "", "config file (default ~/.neoncv/config.yaml)")
	pf.String("history-db", "", "sqlite export history path; \"off\" disables it")
	pf.String("chrome-path", "", "Chrome/Chromium executable")
	pf.String("log-level", "", "debug, info, warn or error")
	_ = rt.v.BindPFlag("history_db", pf.Lookup("history-db"))
	_ = rt.v.BindPFlag("chrome_path", pf.Lookup("chrome-path"))
	_ = rt.v.BindPFlag("log_level", pf.Lookup("log-level"))

	root.AddCommand(
		newExportCmd(rt),
		newImportCmd(),
		newValidateCmd(),
		newInspectCmd(),
		newHistoryCmd(rt),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// openHistory opens the sqlite history unless it is disabled. Failures only
// disable history.
func (rt *runtime) openHistory(ctx context.Context) *repository.SQLiteJobsRepo {
	if rt.history != nil {
		return rt.history
	}
	path := rt.settings.HistoryDB
	if path == "" || path == "off" {
		return nil
	}
	h, err := repository.OpenSQLite(ctx, path)
	if err != nil {
		slog.Warn("export history disabled", "path", path, "error", err)
		return nil
	}
	rt.history = h
	return h
}

// exporter wires an Exporter. The browser is only set up when raster is
// true; the returned cleanup releases it.
func (rt *runtime) exporter(ctx context.Context, raster bool) (*usecase.Exporter, func()) {
	var (
		r       usecase.Rasterizer
		cleanup = func() {}
	)
	if raster {
		var inliner *infrastructure.ImageInliner
		if rt.settings.InlineImages {
			inliner = infrastructure.NewImageInliner(infrastructure.InlinerOptions{})
			cleanup = inliner.Close
		}
		r = infrastructure.NewChromedpRasterizer(rt.settings.ChromePath, rt.settings.RenderTimeout, inliner)
	}
	var jobs usecase.JobsRepo
	if h := rt.openHistory(ctx); h != nil {
		jobs = h
	}
	return usecase.NewExporter(r, jobs, download.NewMemoryRegistry()), cleanup
}
