package platform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/manifest"
)

const desktopEntryGroup = "[Desktop Entry]"

// DesktopEntryAPI switches icons by rewriting the Icon key of the
// application's freedesktop .desktop entry
type DesktopEntryAPI struct {
	path     string
	manifest *manifest.Manifest
	logger   logging.Logger
}

// NewDesktopEntryAPI creates a desktop entry icon API.
// Without an explicit path the user-local entry for AppID is used.
func NewDesktopEntryAPI(opts Options) *DesktopEntryAPI {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLogger()
	}
	path := opts.DesktopFile
	if path == "" {
		path = userDesktopEntryPath(opts.AppID)
	}
	return &DesktopEntryAPI{
		path:     path,
		manifest: opts.Manifest,
		logger:   opts.Logger,
	}
}

// userDesktopEntryPath follows the XDG base directory rules
func userDesktopEntryPath(appID string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "applications", appID+".desktop")
}

// Path returns the desktop entry this API edits
func (d *DesktopEntryAPI) Path() string {
	return d.path
}

// SupportsAlternateIcons requires declared alternates and an installed entry
func (d *DesktopEntryAPI) SupportsAlternateIcons() bool {
	if !d.manifest.HasAlternates() || d.path == "" {
		return false
	}
	info, err := os.Stat(d.path)
	return err == nil && info.Mode().IsRegular()
}

func (d *DesktopEntryAPI) SetAlternateIconName(ctx context.Context, name *string, completion func(error)) {
	go func() {
		completion(d.apply(ctx, name))
	}()
}

func (d *DesktopEntryAPI) apply(ctx context.Context, name *string) error {
	icon, err := d.manifest.ResolveIcon(name)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(d.path)
	if err != nil {
		return err
	}

	updated, err := SetDesktopEntryIcon(content, icon)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeFileAtomic(d.path, updated); err != nil {
		return err
	}

	// Launchers watch the directory mtime to pick up edited entries
	now := time.Now()
	if err := os.Chtimes(filepath.Dir(d.path), now, now); err != nil {
		d.logger.Warn("Failed to touch applications directory", "path", filepath.Dir(d.path), "error", err)
	}

	d.logger.Debug("Desktop entry icon updated", "path", d.path, "icon", icon)
	return nil
}

// SetDesktopEntryIcon sets the Icon key of the [Desktop Entry] group,
// appending it to the group when absent. Other groups and localized
// Icon[xx] keys are left untouched, and every other line keeps its bytes
// and line ending.
func SetDesktopEntryIcon(content []byte, icon string) ([]byte, error) {
	eol := []byte("\n")
	if bytes.Contains(content, []byte("\r\n")) {
		eol = []byte("\r\n")
	}
	iconLine := func(ending []byte) []byte {
		return append([]byte("Icon="+icon), ending...)
	}

	var (
		out       bytes.Buffer
		inEntry   bool
		seenEntry bool
		written   bool
	)

	for _, line := range bytes.SplitAfter(content, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		body := bytes.TrimRight(line, "\r\n")
		ending := line[len(body):]
		trimmed := strings.TrimSpace(string(body))

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if inEntry && !written {
				out.Write(iconLine(eol))
				written = true
			}
			inEntry = trimmed == desktopEntryGroup
			if inEntry {
				seenEntry = true
			}
		} else if inEntry {
			key, _, ok := strings.Cut(trimmed, "=")
			if ok && strings.TrimSpace(key) == "Icon" {
				if !written {
					out.Write(iconLine(ending))
					written = true
				}
				continue
			}
		}

		out.Write(line)
	}

	if !seenEntry {
		return nil, fmt.Errorf("desktop entry has no %s group", desktopEntryGroup)
	}
	if !written {
		if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
			// keep the file's missing final newline
			out.Write(eol)
			out.Write(iconLine(nil))
		} else {
			out.Write(iconLine(eol))
		}
	}
	return out.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".iconswitch-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
