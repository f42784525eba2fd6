package platform

import (
	"context"
	"sync"
	"time"

	"iconswitch/internal/manifest"
)

// Simulated is an in-memory icon host for development and tests.
// It accepts any variant declared in its manifest (any name at all when the
// manifest is nil) and rejects the rest with manifest.ErrUnknownVariant.
type Simulated struct {
	mu        sync.Mutex
	manifest  *manifest.Manifest
	supported bool
	current   *string
	failure   error
	delay     time.Duration
	calls     int
}

// NewSimulated creates a simulated host
func NewSimulated(m *manifest.Manifest, supported bool) *Simulated {
	return &Simulated{manifest: m, supported: supported}
}

// SetSupported toggles the capability check result
func (s *Simulated) SetSupported(supported bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supported = supported
}

// SetFailure makes every following change fail with err; nil clears it
func (s *Simulated) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// SetDelay makes the OS callback wait before completing
func (s *Simulated) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Current returns the active alternate name, nil for the primary icon
func (s *Simulated) Current() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	name := *s.current
	return &name
}

// Calls returns how many times the icon change primitive was invoked
func (s *Simulated) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Simulated) SupportsAlternateIcons() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supported
}

func (s *Simulated) SetAlternateIconName(ctx context.Context, name *string, completion func(error)) {
	s.mu.Lock()
	s.calls++
	delay := s.delay
	s.mu.Unlock()

	var requested *string
	if name != nil {
		n := *name
		requested = &n
	}

	go func() {
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				completion(ctx.Err())
				return
			case <-timer.C:
			}
		}
		completion(s.apply(requested))
	}()
}

func (s *Simulated) apply(name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}
	if name != nil && s.manifest != nil {
		if _, ok := s.manifest.Lookup(*name); !ok {
			return manifest.ErrUnknownVariant
		}
	}
	s.current = name
	return nil
}
