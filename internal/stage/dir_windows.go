package stage

import (
	"fmt"
	"os"
)

// checkDir rejects anything but a plain directory. The temp directory is
// inside the user profile on Windows.
func checkDir(dir string) error {
	fi, err := os.Lstat(dir)
	if err != nil {
		return fmt.Errorf("stage: stat %s: %w", dir, err)
	}
	if !fi.IsDir() || fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s is not a directory", ErrUntrustedDir, dir)
	}
	return nil
}
