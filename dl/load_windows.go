package dl

import "golang.org/x/sys/windows"

func loadLibrary(name string) (uintptr, error) {
	handle, err := windows.LoadLibrary(name)
	return uintptr(handle), err
}

func loadSymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

func closeLibrary(lib uintptr) error {
	return windows.FreeLibrary(windows.Handle(lib))
}
