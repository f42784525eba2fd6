//go:build linux

package platform

func newNativeIconAPI(opts Options) IconAPI {
	return NewDesktopEntryAPI(opts)
}
