//go:build !windows

package platform

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// CheckAccess returns an error wrapping ErrPermission if the mode bits that
// apply to the current user deny the requested access. Root is not special-cased:
// the answer reflects the bits, not what an elevated process could do.
func CheckAccess(path string, info fs.FileInfo, want Access) error {
	if info == nil {
		var err error
		info, err = os.Stat(path)
		if err != nil {
			return err
		}
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}

	perms := info.Mode().Perm()
	var readBit, writeBit fs.FileMode
	var who string

	switch {
	case int(stat.Uid) == os.Geteuid():
		readBit, writeBit, who = 0o400, 0o200, "owner"
	case inGroup(int(stat.Gid)):
		readBit, writeBit, who = 0o040, 0o020, "group"
	default:
		readBit, writeBit, who = 0o004, 0o002, "others"
	}

	if want&Read != 0 && perms&readBit == 0 {
		return fmt.Errorf("%w reading %s: %s has no read bit", ErrPermission, path, who)
	}
	if want&Write != 0 && perms&writeBit == 0 {
		return fmt.Errorf("%w writing %s: %s has no write bit", ErrPermission, path, who)
	}
	return nil
}

func inGroup(gid int) bool {
	if gid == os.Getegid() {
		return true
	}
	groups, err := syscall.Getgroups()
	if err != nil {
		return false
	}
	for _, g := range groups {
		if g == gid {
			return true
		}
	}
	return false
}
