package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/crgimenes/wry/dl"
	"github.com/crgimenes/wry/internal/nativetest"
	"github.com/crgimenes/wry/internal/stage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// run executes wryctl with an isolated config directory and returns stdout
// and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	var out, errOut bytes.Buffer
	err := Execute("test", args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wryctl test\n", out)
}

func TestProbe(t *testing.T) {
	out, _, err := run(t, "probe", "--library", nativetest.Library(t))
	require.NoError(t, err)
	assert.Equal(t, "Result: 42 (expected 42)\n", out)
}

func TestProbeFromEnvironment(t *testing.T) {
	t.Setenv("WRY_LIBRARY", nativetest.Library(t))

	out, _, err := run(t, "probe")
	require.NoError(t, err)
	assert.Equal(t, "Result: 42 (expected 42)\n", out)
}

func TestProbeFromConfigFile(t *testing.T) {
	lib := nativetest.Library(t)
	file := filepath.Join(t.TempDir(), "wryctl.yaml")
	require.NoError(t, os.WriteFile(file, []byte("library: "+lib+"\ndebug: true\n"), 0o600))

	out, errOut, err := run(t, "--config", file, "probe")
	require.NoError(t, err)
	assert.Equal(t, "Result: 42 (expected 42)\n", out)
	assert.Contains(t, errOut, "library opened")
}

func TestProbeMissingLibrary(t *testing.T) {
	_, _, err := run(t, "probe", "-l", filepath.Join(t.TempDir(), "libnope.so"))
	assert.ErrorIs(t, err, dl.ErrLibraryNotFound)
}

func TestProbeChecksum(t *testing.T) {
	lib := nativetest.Library(t)
	digest, err := stage.SumFile(lib)
	require.NoError(t, err)

	_, _, err = run(t, "probe", "-l", lib, "--checksum", digest)
	require.NoError(t, err)

	_, _, err = run(t, "probe", "-l", lib, "--checksum", strings.Repeat("f", len(digest)))
	assert.ErrorIs(t, err, dl.ErrChecksumMismatch)
}

func TestCall(t *testing.T) {
	lib := nativetest.Library(t)

	tests := []struct {
		arg  string
		want string
	}{
		{arg: "41", want: "42\n"},
		{arg: "-1", want: "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			out, _, err := run(t, "call", "-l", lib, "--", tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCallInvalidArgument(t *testing.T) {
	_, _, err := run(t, "call", "-l", nativetest.Library(t), "99999999999")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Setenv("DISPLAY", ":0")

	_, _, err := run(t, "run", "-l", nativetest.Library(t), "http://127.0.0.1:1/")
	assert.NoError(t, err)
}

func TestServe(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	dir := t.TempDir()

	out, _, err := run(t, "serve", "-l", nativetest.Library(t), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "serving "+dir+" at http://127.0.0.1:")
}

func TestServeNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<h1>hi</h1>"), 0o600))

	_, _, err := run(t, "serve", file)
	assert.Error(t, err)
}

func TestSymbols(t *testing.T) {
	lib := nativetest.Library(t)

	out, _, err := run(t, "symbols", "-l", lib, "wry_test_simple", "wry_test_with_param", "wry_create_and_run")
	require.NoError(t, err)
	assert.Equal(t, "wry_test_simple\tok\nwry_test_with_param\tok\nwry_create_and_run\tok\n", out)

	out, _, err = run(t, "symbols", "-l", lib, "answer", "nope")
	assert.EqualError(t, err, "1 of 2 symbols missing")
	assert.Equal(t, "answer\tok\nnope\tmissing\n", out)
}

func TestChecksum(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lib.so")
	require.NoError(t, os.WriteFile(file, []byte("image"), 0o600))
	want, err := stage.SumFile(file)
	require.NoError(t, err)

	out, _, err := run(t, "checksum", file)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)
}
