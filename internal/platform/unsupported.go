package platform

import (
	"context"
	"errors"
)

// ErrNoAlternateIcons is reported if an unsupported host is asked to switch anyway
var ErrNoAlternateIcons = errors.New("alternate icons are not available on this platform")

// UnsupportedAPI is the icon API of a platform without alternate icons
type UnsupportedAPI struct{}

func (UnsupportedAPI) SupportsAlternateIcons() bool { return false }

func (UnsupportedAPI) SetAlternateIconName(_ context.Context, _ *string, completion func(error)) {
	go completion(ErrNoAlternateIcons)
}
