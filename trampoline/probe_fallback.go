//go:build !unix

package trampoline

// platformStackLimit backs non-unix GOOS targets, which have no
// RLIMIT_STACK equivalent exposed through golang.org/x/sys. This is a
// platform gap (spec.md §4.2.1a), not a design choice.
func platformStackLimit() uint64 {
	return fallbackStackLimit
}
