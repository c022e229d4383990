//go:build unix

package trampoline

import "golang.org/x/sys/unix"

// platformStackLimit reads RLIMIT_STACK, the same source
// original_source/core/base.c's getrlimit(RLIMIT_STACK) call uses
// (spec.md §4.2.1a).
func platformStackLimit() uint64 {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rlim); err != nil {
		return fallbackStackLimit
	}
	return uint64(rlim.Cur)
}
