// File: pool/threadcheck.go
// Author: fmontorsi
// License: BSD license
//
// Debug-only single-owner discipline check. The pool records the identity
// of the first OS thread to touch it and panics when a later access comes
// from a different thread. Platform-specific thread ids live in
// threadid_linux.go and threadid_stub.go.

package pool

import "fmt"

// threadGuard is inert unless enabled via WithThreadAffinityCheck, and on
// platforms where threadID reports zero.
type threadGuard struct {
	enabled bool
	tid     int
}

func (g *threadGuard) check() {
	if !g.enabled {
		return
	}
	cur := threadID()
	if cur == 0 {
		return
	}
	if g.tid == 0 {
		g.tid = cur
		return
	}
	if g.tid != cur {
		panic(fmt.Sprintf("pool: accessed from thread %d but owned by thread %d; pools are single-threaded by design", cur, g.tid))
	}
}
