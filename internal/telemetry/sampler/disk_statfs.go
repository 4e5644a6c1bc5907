//go:build linux || darwin || freebsd

package sampler

import (
	"golang.org/x/sys/unix"
)

// diskUsagePercent reports used space the way df does: reserved blocks
// count as neither used nor available.
func diskUsagePercent(path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	bsize := uint64(st.Bsize)
	used := (uint64(st.Blocks) - uint64(st.Bfree)) * bsize
	avail := uint64(st.Bavail) * bsize
	if used+avail == 0 {
		return 0, nil
	}
	return clampPercent(float64(used) / float64(used+avail) * 100), nil
}

func kernelRelease() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return unix.ByteSliceToString(u.Release[:])
}
