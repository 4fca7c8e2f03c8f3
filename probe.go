package wry

import "github.com/crgimenes/wry/dl"

// Probe opens the backend at path, calls wry_test_simple through a raw
// symbol call and unloads the library again. A healthy backend returns
// ProbeExpected. An empty path uses LibraryPath.
func Probe(path string, opts ...dl.Option) (int32, error) {
	if path == "" {
		path = LibraryPath()
	}

	var result int32
	err := dl.With(path, func(lib *dl.Library) error {
		sym, err := lib.Resolve("wry_test_simple")
		if err != nil {
			return err
		}
		r, err := sym.Call()
		result = int32(r)
		return err
	}, opts...)
	return result, err
}
