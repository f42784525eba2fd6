package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iconswitch/internal/config"
	"iconswitch/internal/iconbridge"
	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/manifest"
	"iconswitch/internal/platform"
	"iconswitch/internal/transport"

	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd hosts the bridge until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the icon bridge over WebSocket",
	Long: `Registers the app_icon host and serves it at ws://ADDR/bridge.

The host switches icons through the OS (the user's .desktop entry on Linux,
the per-user DefaultIcon registration on Windows). Use --simulate to run an
in-memory host instead.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listenAddr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	server, err := startHost(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving app_icon bridge at ws://%s%s\n", server.Addr(), transport.BridgePath)

	<-ctx.Done()

	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return server.Stop(stopCtx)
}

// startHost wires the host to the platform icon API and starts serving it
func startHost(cfg *config.Config, logger logging.Logger) (*transport.Server, error) {
	m, err := manifest.Load(cfg.ManifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Icon manifest not found, no alternate icons declared", "path", cfg.ManifestPath)
		m, err = &manifest.Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	api := platform.New(platform.Options{
		AppID:       cfg.AppID,
		DesktopFile: cfg.DesktopFile,
		Manifest:    m,
		Simulate:    cfg.Simulate,
		Logger:      logger,
	})

	mux := iconbridge.NewMux(logger)
	iconbridge.NewHost(api, logger).Register(mux)

	server := transport.NewServer(cfg.ListenAddr, mux, logger)
	if err := server.Start(); err != nil {
		return nil, err
	}
	return server, nil
}
