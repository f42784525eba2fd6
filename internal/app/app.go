package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"iconswitch/internal/config"
	"iconswitch/internal/iconbridge"
	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/manifest"
	"iconswitch/internal/platform"
	"iconswitch/internal/transport"
)

const (
	// shutdownTimeout bounds how long closing the bridge server may take
	shutdownTimeout = 5 * time.Second
)

// IconResult is an icon change outcome as the frontend sees it
type IconResult struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func resultOf(o iconbridge.Outcome) IconResult {
	if o.OK() {
		return IconResult{OK: true}
	}
	return IconResult{Code: o.Code().String(), Message: o.Message()}
}

// App is the desktop shell: it hosts the icon bridge and binds a client to the frontend
type App struct {
	ctx      context.Context
	cfg      *config.Config
	logger   logging.Logger
	manifest *manifest.Manifest
	api      platform.IconAPI
	mux      *iconbridge.Mux
	host     *iconbridge.Host
	client   *iconbridge.Client
	server   *transport.Server
}

// NewApp wires the bridge from configuration
func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	bridgeerrors.SetDefaultRetryLogger(logger)

	m, err := loadManifest(cfg.ManifestPath, logger)
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
	client := iconbridge.NewClient(iconbridge.NewLocalTransport(mux),
		iconbridge.WithTimeout(cfg.RequestTimeout),
		iconbridge.WithLogger(logger))

	return &App{
		cfg:      cfg,
		logger:   logger,
		manifest: m,
		api:      api,
		mux:      mux,
		host:     iconbridge.NewHost(api, logger),
		client:   client,
		server:   transport.NewServer(cfg.ListenAddr, mux, logger),
	}, nil
}

// loadManifest tolerates a missing manifest: with nothing declared the
// host simply reports alternate icons as unsupported
func loadManifest(path string, logger logging.Logger) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Icon manifest not found, no alternate icons declared", "path", path)
		return &manifest.Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Icon manifest loaded", "path", path, "alternates", m.Names())
	return m, nil
}

// Startup is called at application startup. The host is registered here,
// before the frontend or any remote client can issue a request.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.host.Register(a.mux)

	if err := a.server.Start(); err != nil {
		// Remote clients are optional; the bound frontend methods keep working
		logging.LogError(a.logger, err, "startup", map[string]interface{}{
			"listen_addr": a.cfg.ListenAddr,
		})
	}

	a.logger.Info("Application started",
		"environment", a.cfg.Environment,
		"alternate_icons_supported", a.api.SupportsAlternateIcons())
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Warn("Bridge server did not stop cleanly", "error", err)
	}
	a.logger.Info("Application shutdown completed")
}

func (a *App) requestContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// SetIcon switches to the named alternate icon
func (a *App) SetIcon(name string) IconResult {
	return resultOf(a.client.SetIcon(a.requestContext(), name))
}

// ResetIcon restores the primary icon
func (a *App) ResetIcon() IconResult {
	return resultOf(a.client.ResetIcon(a.requestContext()))
}

// SupportsAlternateIcons lets the frontend hide the feature where it cannot work
func (a *App) SupportsAlternateIcons() bool {
	return a.api.SupportsAlternateIcons()
}

// AlternateIcons lists the declared alternate icon names
func (a *App) AlternateIcons() []string {
	return a.manifest.Names()
}

// BridgeAddr returns the address remote clients can reach the host on
func (a *App) BridgeAddr() string {
	return fmt.Sprintf("ws://%s%s", a.server.Addr(), transport.BridgePath)
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}
