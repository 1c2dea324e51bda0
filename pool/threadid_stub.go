//go:build !linux
// +build !linux

// File: pool/threadid_stub.go
// Author: fmontorsi
// License: BSD license
//
// Stub for platforms without a cheap thread id; the affinity guard stays
// inert there.

package pool

func threadID() int { return 0 }
