//go:build darwin || freebsd || linux || netbsd

package wry

import (
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/unix"
)

// LibraryPath returns the first readable backend library found in
// $WRY_PATH, the executable's directory, its lib subdirectory, ./lib and
// (on darwin) the app bundle's Frameworks directory. Without a match the
// bare file name is returned for the system search path.
func LibraryPath() string {
	name := "libwry_zig_wrapper.so"

	wryPath := os.Getenv("WRY_PATH")
	execPath, _ := os.Executable()
	dir := filepath.Dir(execPath)
	paths := []string{wryPath, dir, filepath.Join(dir, "lib"), "lib"}

	if runtime.GOOS == "darwin" {
		name = "libwry_zig_wrapper.dylib"
		paths = append(paths, filepath.Join(dir, "..", "Frameworks"))
	}

	for _, v := range paths {
		if v == "" {
			continue
		}
		n := filepath.Join(v, name)
		if unix.Access(n, unix.R_OK) == nil {
			return n
		}
	}

	return name
}
