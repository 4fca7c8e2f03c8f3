package dl

import "errors"

var (
	// ErrLibraryNotFound is returned when a path does not resolve to a
	// loadable library: the file is missing, built for another architecture
	// or one of its own dependencies cannot be resolved.
	ErrLibraryNotFound = errors.New("library not found")

	// ErrSymbolNotFound is returned when a name is absent from the export
	// table of an open library.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrInvalidHandle is returned when a closed library is used, including
	// a second Close.
	ErrInvalidHandle = errors.New("invalid library handle")

	// ErrSignature is returned when a Go function type cannot be marshalled
	// to a native call.
	ErrSignature = errors.New("unsupported function signature")

	// ErrChecksumMismatch is returned by Open when WithChecksum is set and
	// the library file does not match the expected digest.
	ErrChecksumMismatch = errors.New("library checksum mismatch")
)

// Error describes a failed binder operation. It unwraps to both the
// sentinel in Err and the platform error in Cause.
type Error struct {
	Op    string // open, resolve, call, bind, close or stage
	Name  string // library path or symbol name
	Err   error
	Cause error
}

func (e *Error) Error() string {
	msg := "dl: " + e.Op + " " + e.Name
	for _, err := range e.Unwrap() {
		msg += ": " + err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.Err, e.Cause} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func invalidHandle(op, name string) error {
	return &Error{Op: op, Name: name, Err: ErrInvalidHandle}
}
