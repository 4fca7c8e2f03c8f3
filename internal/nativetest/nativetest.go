// Package nativetest builds a small shared library for tests that need a
// real native target.
//
// The library exports:
//
//	int32_t answer(void);                       // 42
//	int32_t add_one(int32_t x);                 // x + 1
//	int32_t wry_test_simple(void);              // 42
//	int32_t wry_test_with_param(int32_t x);     // x + 1
//	void    wry_create_and_run(const char *url);
//	const char *fixture_last_url(void);         // last url passed above
//	int32_t fixture_runs(void);                 // wry_create_and_run calls
package nativetest

import (
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

//go:embed testdata/fixture.c
var source []byte

// Name returns the platform file name of the fixture library.
func Name() string {
	if runtime.GOOS == "darwin" {
		return "libfixture.dylib"
	}
	return "libfixture.so"
}

// Library compiles the fixture into a fresh temporary directory and returns
// the library path. The test is skipped when no C compiler is available.
func Library(tb testing.TB) string {
	tb.Helper()

	if runtime.GOOS == "windows" {
		tb.Skip("native fixture needs a unix C toolchain")
	}
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	compiler, err := exec.LookPath(cc)
	if err != nil {
		tb.Skipf("no C compiler available: %v", err)
	}

	dir := tb.TempDir()
	src := filepath.Join(dir, "fixture.c")
	if err := os.WriteFile(src, source, 0o600); err != nil {
		tb.Fatalf("write fixture source: %v", err)
	}

	out := filepath.Join(dir, Name())
	cmd := exec.Command(compiler, "-shared", "-fPIC", "-O0", "-o", out, src) //nolint:gosec
	if b, err := cmd.CombinedOutput(); err != nil {
		tb.Fatalf("compile fixture: %v\n%s", err, b)
	}
	return out
}

// Image returns the bytes of a freshly compiled fixture library.
func Image(tb testing.TB) []byte {
	tb.Helper()

	data, err := os.ReadFile(Library(tb))
	if err != nil {
		tb.Fatalf("read fixture: %v", err)
	}
	return data
}
