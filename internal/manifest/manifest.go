// Package manifest loads the declaration of alternate icon variants that the
// application's packaging registers with the host OS.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownVariant is returned when a name is not declared in the manifest
var ErrUnknownVariant = errors.New("invalid variant")

// Alternate is one declared alternate icon
type Alternate struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}

// Manifest lists the primary icon and its declared alternates
type Manifest struct {
	Primary     string      `yaml:"primary" json:"primary"`
	PrimaryIcon string      `yaml:"primaryIcon" json:"primaryIcon"`
	Alternates  []Alternate `yaml:"alternates" json:"alternates"`

	dir string
}

// Load reads and validates a YAML manifest. Relative icon paths are
// resolved against the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates manifest YAML
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that alternate names are non-empty and unique
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Alternates))
	for i, alt := range m.Alternates {
		name := strings.TrimSpace(alt.Name)
		if name == "" {
			return fmt.Errorf("alternate %d: empty name", i)
		}
		if name == m.Primary {
			return fmt.Errorf("alternate %q: shadows the primary icon", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("alternate %q: declared twice", name)
		}
		if strings.TrimSpace(alt.Icon) == "" {
			return fmt.Errorf("alternate %q: empty icon path", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Lookup returns the alternate declared under name
func (m *Manifest) Lookup(name string) (Alternate, bool) {
	if m == nil {
		return Alternate{}, false
	}
	for _, alt := range m.Alternates {
		if alt.Name == name {
			return alt, true
		}
	}
	return Alternate{}, false
}

// HasAlternates reports whether any alternate is declared
func (m *Manifest) HasAlternates() bool {
	return m != nil && len(m.Alternates) > 0
}

// Names returns the declared alternate names in sorted order
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Alternates))
	for _, alt := range m.Alternates {
		names = append(names, alt.Name)
	}
	sort.Strings(names)
	return names
}

// ResolveIcon maps an optional variant name to an icon path.
// nil selects the primary icon.
func (m *Manifest) ResolveIcon(name *string) (string, error) {
	if name == nil {
		if m == nil || m.PrimaryIcon == "" {
			return "", fmt.Errorf("primary icon: %w", ErrUnknownVariant)
		}
		return m.abs(m.PrimaryIcon), nil
	}

	alt, ok := m.Lookup(*name)
	if !ok {
		return "", fmt.Errorf("%q: %w", *name, ErrUnknownVariant)
	}
	return m.abs(alt.Icon), nil
}

func (m *Manifest) abs(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}
