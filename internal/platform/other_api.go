//go:build !linux && !windows

package platform

// macOS only exposes alternate icons to bundled UIKit apps; everything
// outside Linux and Windows reports the capability as absent.
func newNativeIconAPI(opts Options) IconAPI {
	opts.Logger.Info("Alternate icons not available on this platform")
	return UnsupportedAPI{}
}
