//go:build !linux

package dl

import "os"

// pinnedPath returns the path f was opened with. Only Linux can load a
// library through an open descriptor.
func pinnedPath(f *os.File) string {
	return f.Name()
}
