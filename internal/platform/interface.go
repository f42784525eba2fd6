package platform

import (
	"context"

	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/manifest"
)

// IconAPI is the host OS's alternate-icon primitive
type IconAPI interface {
	// SupportsAlternateIcons is the synchronous capability check
	SupportsAlternateIcons() bool
	// SetAlternateIconName switches to the named variant, or back to the
	// primary icon when name is nil. It returns immediately; completion is
	// called once, from another goroutine, with the OS result.
	SetAlternateIconName(ctx context.Context, name *string, completion func(error))
}

// Options configures the platform icon API
type Options struct {
	AppID       string             // desktop entry id / executable name
	DesktopFile string             // explicit .desktop path (Linux)
	Manifest    *manifest.Manifest // declared alternate icons
	Simulate    bool               // use the in-memory host instead of the OS
	Logger      logging.Logger
}

// New returns the icon API for the current OS, or the simulated host when requested
func New(opts Options) IconAPI {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLogger()
	}
	if opts.Simulate {
		opts.Logger.Info("Using simulated icon host", "alternates", opts.Manifest.Names())
		return NewSimulated(opts.Manifest, true)
	}
	return newNativeIconAPI(opts)
}
