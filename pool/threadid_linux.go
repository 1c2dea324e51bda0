//go:build linux
// +build linux

// File: pool/threadid_linux.go
// Author: fmontorsi
// License: BSD license

package pool

import "golang.org/x/sys/unix"

// threadID returns the kernel task id of the calling thread. Only stable
// across calls while the goroutine is pinned with runtime.LockOSThread.
func threadID() int {
	return unix.Gettid()
}
