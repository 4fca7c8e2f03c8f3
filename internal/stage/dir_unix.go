//go:build unix

package stage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// checkDir rejects symlinks, directories owned by someone else and
// directories with group or other permission bits.
func checkDir(dir string) error {
	var st unix.Stat_t
	if err := unix.Lstat(dir, &st); err != nil {
		return fmt.Errorf("stage: stat %s: %w", dir, err)
	}
	if uint32(st.Mode)&unix.S_IFMT != unix.S_IFDIR {
		return fmt.Errorf("%w: %s is not a directory", ErrUntrustedDir, dir)
	}
	if int(st.Uid) != os.Getuid() {
		return fmt.Errorf("%w: %s is owned by uid %d", ErrUntrustedDir, dir, st.Uid)
	}
	if perm := uint32(st.Mode) & 0o777; perm&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %#o", ErrUntrustedDir, dir, perm)
	}
	return nil
}
