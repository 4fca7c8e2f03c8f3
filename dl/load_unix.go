//go:build darwin || freebsd || linux || netbsd

package dl

import "github.com/ebitengine/purego"

// RTLD_NOW surfaces unresolved transitive symbols at open time instead of
// at the first call.
func loadLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func loadSymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func closeLibrary(lib uintptr) error {
	return purego.Dlclose(lib)
}
