package wry

import (
	"os"
	"path/filepath"
)

// LibraryPath returns the backend DLL from %WRY_PATH% or the executable's
// directory, or the bare name for the system search order.
func LibraryPath() string {
	name := "wry_zig_wrapper.dll"

	wryPath := os.Getenv("WRY_PATH")
	execPath, _ := os.Executable()
	dir := filepath.Dir(execPath)

	for _, v := range []string{wryPath, dir} {
		if v == "" {
			continue
		}
		n := filepath.Join(v, name)
		if _, err := os.Stat(n); err == nil {
			return n
		}
	}

	return name
}
