//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/manifest"
)

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var (
	shell32            = windows.NewLazySystemDLL("shell32.dll")
	procSHChangeNotify = shell32.NewProc("SHChangeNotify")
)

// RegistryAPI switches icons through the per-user DefaultIcon registration
// of the application's executable
type RegistryAPI struct {
	exe      string
	manifest *manifest.Manifest
	logger   logging.Logger
}

func newNativeIconAPI(opts Options) IconAPI {
	return NewRegistryAPI(opts)
}

// NewRegistryAPI creates a registry-backed icon API
func NewRegistryAPI(opts Options) *RegistryAPI {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLogger()
	}
	exe := opts.AppID + ".exe"
	if path, err := os.Executable(); err == nil {
		exe = filepath.Base(path)
	}
	return &RegistryAPI{
		exe:      exe,
		manifest: opts.Manifest,
		logger:   opts.Logger,
	}
}

func (r *RegistryAPI) keyPath() string {
	return fmt.Sprintf(`Software\Classes\Applications\%s\DefaultIcon`, r.exe)
}

// SupportsAlternateIcons requires at least one declared alternate
func (r *RegistryAPI) SupportsAlternateIcons() bool {
	return r.manifest.HasAlternates()
}

func (r *RegistryAPI) SetAlternateIconName(ctx context.Context, name *string, completion func(error)) {
	go func() {
		completion(r.apply(ctx, name))
	}()
}

func (r *RegistryAPI) apply(ctx context.Context, name *string) error {
	if name == nil {
		// Dropping the override restores the icon embedded in the executable
		err := registry.DeleteKey(registry.CURRENT_USER, r.keyPath())
		if err != nil && !errors.Is(err, registry.ErrNotExist) {
			return err
		}
		return r.notifyShell()
	}

	icon, err := r.manifest.ResolveIcon(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key, _, err := registry.CreateKey(registry.CURRENT_USER, r.keyPath(), registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetStringValue("", icon); err != nil {
		return err
	}

	r.logger.Debug("DefaultIcon registration updated", "key", r.keyPath(), "icon", icon)
	return r.notifyShell()
}

// notifyShell asks Explorer to refresh cached icons
func (r *RegistryAPI) notifyShell() error {
	if err := procSHChangeNotify.Find(); err != nil {
		return err
	}
	procSHChangeNotify.Call(uintptr(shcneAssocChanged), uintptr(shcnfIDList), 0, 0)
	return nil
}
