// Package dl opens native shared libraries at runtime and binds their
// exported functions to Go values without cgo.
//
// A Library moves from open to closed exactly once. Resolution and
// invocation check that state under a read lock and Close takes the write
// lock, so a closed handle is never passed to the platform loader and Close
// waits for calls that are still running.
//
// Symbols carry no type information. Whoever binds a symbol asserts its
// native signature, and a wrong assertion is undefined behaviour that
// neither this package nor the operating system can detect.
package dl

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/crgimenes/wry/internal/stage"
)

// linkerMu serializes open and close. The dynamic linker state is process
// wide and not every platform allows concurrent dlopen/dlclose.
var linkerMu sync.Mutex

// Option configures Open.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	checksum string
}

// WithLogger sets the logger used for debug events. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithChecksum makes Open verify the library file against a hex encoded
// BLAKE2b-256 digest before loading it. An empty digest disables the check.
func WithChecksum(digest string) Option {
	return func(o *options) { o.checksum = digest }
}

func newOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Library is an open dynamic library.
type Library struct {
	mu     sync.RWMutex
	handle uintptr
	path   string
	closed bool
	log    *slog.Logger
}

// Open loads the library at path into the process. Static initializers of
// the library run as a side effect.
func Open(path string, opts ...Option) (*Library, error) {
	o := newOptions(opts)
	if path == "" {
		// dlopen(NULL) would hand back the main program.
		return nil, &Error{Op: "open", Name: path, Err: ErrLibraryNotFound, Cause: errors.New("empty path")}
	}
	loadPath := path
	if o.checksum != "" {
		f, err := verifyChecksum(path, o.checksum)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		loadPath = pinnedPath(f)
	}

	linkerMu.Lock()
	handle, err := loadLibrary(loadPath)
	linkerMu.Unlock()
	if err != nil {
		return nil, &Error{Op: "open", Name: path, Err: ErrLibraryNotFound, Cause: err}
	}
	if handle == 0 {
		return nil, &Error{Op: "open", Name: path, Err: ErrLibraryNotFound, Cause: errors.New("native library handle is nil")}
	}

	o.logger.Debug("library opened", slog.String("path", path))
	return &Library{handle: handle, path: path, log: o.logger}, nil
}

// OpenBytes writes a library image to a content addressed directory under
// os.TempDir and opens it from there. name is the file name given to the
// staged library.
func OpenBytes(name string, data []byte, opts ...Option) (*Library, error) {
	path, err := stage.Write(name, data)
	if err != nil {
		return nil, &Error{Op: "stage", Name: name, Err: ErrLibraryNotFound, Cause: err}
	}
	return Open(path, opts...)
}

// With opens the library at path, passes it to fn and closes it on every
// exit path, panics included. A close failure is joined to fn's error.
func With(path string, fn func(*Library) error, opts ...Option) (err error) {
	lib, err := Open(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lib.Close())
	}()
	return fn(lib)
}

// verifyChecksum hashes the file at path and returns it still open, so the
// loader can be pointed at the verified file rather than at the path again.
func verifyChecksum(path, want string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "open", Name: path, Err: ErrLibraryNotFound, Cause: err}
	}
	got, err := stage.Sum(f)
	if err != nil {
		_ = f.Close()
		return nil, &Error{Op: "open", Name: path, Err: ErrLibraryNotFound, Cause: err}
	}
	if got != want {
		_ = f.Close()
		return nil, &Error{
			Op:    "open",
			Name:  path,
			Err:   ErrChecksumMismatch,
			Cause: fmt.Errorf("got %s, want %s", got, want),
		}
	}
	return f, nil
}

// Path returns the path the library was opened with.
func (l *Library) Path() string { return l.path }

// Closed reports whether Close has been called.
func (l *Library) Closed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// Resolve looks up an exported symbol by name.
func (l *Library) Resolve(name string) (*Symbol, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, invalidHandle("resolve", name)
	}

	ptr, err := loadSymbol(l.handle, name)
	if err != nil {
		return nil, &Error{Op: "resolve", Name: name, Err: ErrSymbolNotFound, Cause: err}
	}
	if ptr == 0 {
		return nil, &Error{Op: "resolve", Name: name, Err: ErrSymbolNotFound}
	}

	l.log.Debug("symbol resolved", slog.String("path", l.path), slog.String("symbol", name))
	return &Symbol{lib: l, name: name, addr: ptr}, nil
}

// Close releases the library. The handle is unusable afterwards even when
// the platform reports an error; closing twice returns ErrInvalidHandle.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return invalidHandle("close", l.path)
	}

	linkerMu.Lock()
	err := closeLibrary(l.handle)
	linkerMu.Unlock()

	l.closed = true
	l.handle = 0
	if err != nil {
		return fmt.Errorf("dl: close %s: %w", l.path, err)
	}

	l.log.Debug("library closed", slog.String("path", l.path))
	return nil
}
