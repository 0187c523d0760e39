// Command razor is a terminal file manager with thumbnail previews,
// trash support and multi-level undo.
//
// Usage:
//
//	razor [flags] [path]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/app"
	"github.com/justyntemme/razorcore/internal/config"
	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/metrics"
	"github.com/justyntemme/razorcore/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/razor/config.json)")
	debugMode := flag.Bool("debug", false, "Enable verbose debug logging")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	logOutput := flag.String("log", "", "Log file, stdout or stderr (overrides config)")
	gui := flag.Bool("gui", false, "Open a thumbnail grid window instead of the terminal UI")
	fileManager := flag.Bool("filemanager", false, "Answer org.freedesktop.FileManager1 calls from the desktop")
	generate := flag.Bool("generate-config", false, "Write a default config file, backing up any existing one, and exit")
	flag.Parse()

	if *generate {
		backup, err := config.GenerateConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "razor:", err)
			os.Exit(1)
		}
		if backup != "" {
			fmt.Println("Backed up existing config to", backup)
		}
		fmt.Println("Wrote default config")
		return
	}

	if err := run(*configPath, *debugMode, *gui, *fileManager, *metricsAddr, *logOutput, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "razor:", err)
		os.Exit(1)
	}
}

func run(configPath string, debugMode, gui, fileManager bool, metricsAddr, logOutput, start string) error {
	mgr := config.NewManager()
	if err := mgr.Load(configPath); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg := mgr.Get()

	if logOutput != "" {
		cfg.Logging.Output = logOutput
	}
	if err := logging.Init(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logging.Sync()
	if debugMode {
		logging.SetLevel("debug")
		debug.EnableAll()
	}

	if err := mgr.ParseError(); err != nil {
		logging.Error("config parse error, using defaults", zap.String("path", mgr.Path()), zap.Error(err))
	}

	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	if fileManager {
		cfg.Desktop.FileManagerService = true
	}
	o, err := app.New(&cfg)
	if err != nil {
		return err
	}
	logging.Info("razor starting", zap.String("start", start), zap.String("config", mgr.Path()), zap.Bool("gui", gui))

	if gui {
		app.Main(o, start) // Does not return
	}
	defer o.Close()

	m := tui.New(o, start)
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
