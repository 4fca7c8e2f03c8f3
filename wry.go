// Package wry binds the wry webview backend library at runtime.
//
// The backend is a native shared library exporting three C entry points:
//
//	int32_t wry_test_simple(void);
//	int32_t wry_test_with_param(int32_t x);
//	void    wry_create_and_run(const char *url);
//
// Everything the window does is up to the backend. This package only
// locates the library, binds the symbols and forwards calls.
package wry

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/crgimenes/wry/dl"
)

// init locks the OS thread so the backend event loop started by
// CreateAndRun runs on the main thread, as GTK and Cocoa require.
func init() {
	runtime.LockOSThread()
}

const (
	// DefaultURL is opened when CreateAndRun gets an empty URL. The backend
	// uses the same page for a NULL pointer.
	DefaultURL = "https://www.example.com"

	// ProbeExpected is what wry_test_simple returns from a working backend.
	ProbeExpected int32 = 42
)

// ErrNoDisplay is returned by CreateAndRun on Linux when neither X11 nor
// Wayland is reachable.
var ErrNoDisplay = errors.New("wry: no display available")

// api mirrors the exported backend functions. Field names map to symbols
// with the "wry" prefix.
type api struct {
	TestSimple    func() (int32, error)
	TestWithParam func(x int32) (int32, error)
	CreateAndRun  func(url string) error
}

// Backend is an open backend library with its entry points bound.
type Backend struct {
	lib *dl.Library
	api api
}

// Open loads the backend library at path and binds its entry points. An
// empty path uses LibraryPath.
func Open(path string, opts ...dl.Option) (*Backend, error) {
	if path == "" {
		path = LibraryPath()
	}
	lib, err := dl.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("wry: failed to load native library: %w", err)
	}

	b := &Backend{lib: lib}
	if _, err := dl.BindStruct(lib, "wry", &b.api); err != nil {
		return nil, errors.Join(fmt.Errorf("wry: %w", err), lib.Close())
	}
	return b, nil
}

// Path returns the path the backend was loaded from.
func (b *Backend) Path() string { return b.lib.Path() }

// TestSimple calls wry_test_simple.
func (b *Backend) TestSimple() (int32, error) {
	return b.api.TestSimple()
}

// TestWithParam calls wry_test_with_param.
func (b *Backend) TestWithParam(x int32) (int32, error) {
	return b.api.TestWithParam(x)
}

// CreateAndRun opens a backend window on url and blocks until the window
// is closed. It must be called from the main goroutine.
func (b *Backend) CreateAndRun(url string) error {
	if url == "" {
		url = DefaultURL
	}
	if b.lib.Closed() {
		return &dl.Error{Op: "call", Name: "wry_create_and_run", Err: dl.ErrInvalidHandle}
	}
	if !hasDisplay() {
		return ErrNoDisplay
	}
	return b.api.CreateAndRun(url)
}

// Close unloads the backend. Calls made afterwards return
// dl.ErrInvalidHandle.
func (b *Backend) Close() error {
	return b.lib.Close()
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	_, x11 := os.LookupEnv("DISPLAY")
	_, wayland := os.LookupEnv("WAYLAND_DISPLAY")
	return x11 || wayland
}
