// Package stage writes in-memory library images to disk so the dynamic
// linker can open them by path.
package stage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/blake2b"
)

const (
	dirPrefix = "wry-"
	lockName  = ".lock"
)

// ErrUntrustedDir is returned by Write when the staging directory exists but
// could be modified by another user.
var ErrUntrustedDir = errors.New("stage: untrusted staging directory")

// Sum returns the hex encoded BLAKE2b-256 digest of everything read from r.
func Sum(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumFile returns the digest of the file at path.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Sum(f)
}

func sum(data []byte) string {
	s := blake2b.Sum256(data)
	return hex.EncodeToString(s[:])
}

// Dir returns the directory an image is staged in. It depends only on the
// image content, so every process staging the same bytes agrees on it.
func Dir(data []byte) string {
	return filepath.Join(os.TempDir(), dirPrefix+sum(data)[:16])
}

// Write stages data as name inside Dir(data) and returns the file path. An
// existing file with the same digest is reused; anything else is replaced
// atomically. The directory must be a real directory private to the current
// user, otherwise ErrUntrustedDir is returned. A lock file inside it
// serializes writers across processes.
func Write(name string, data []byte) (string, error) {
	if name == "" || name == lockName || filepath.Base(name) != name {
		return "", fmt.Errorf("stage: invalid library name %q", name)
	}
	if len(data) == 0 {
		return "", errors.New("stage: empty library image")
	}

	dir := Dir(data)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("stage: create %s: %w", dir, err)
	}
	if err := checkDir(dir); err != nil {
		return "", err
	}

	fl := flock.New(filepath.Join(dir, lockName))
	if err := fl.Lock(); err != nil {
		return "", fmt.Errorf("stage: lock %s: %w", dir, err)
	}
	defer fl.Unlock() //nolint:errcheck

	file := filepath.Join(dir, name)
	if got, err := SumFile(file); err == nil && got == sum(data) {
		return file, nil
	}

	tmp, err := os.CreateTemp(dir, name+".*")
	if err != nil {
		return "", fmt.Errorf("stage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("stage: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o700); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("stage: chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("stage: close %s: %w", tmp.Name(), err)
	}
	// Renaming keeps a mapped copy of an older image valid.
	if err := os.Rename(tmp.Name(), file); err != nil {
		return "", fmt.Errorf("stage: rename %s: %w", file, err)
	}
	return file, nil
}
