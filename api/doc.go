// Package api defines the public surface shared by the pool engine and its
// consumers: the intrusive item envelope, the reference-counted handle, the
// recycler contract between items and their owning pool, and the stats
// snapshot used for introspection.
//
// The implementation lives in the pool package; api stays dependency-free so
// pooled types only ever need to embed api.Item.
//
// Author: fmontorsi
// License: BSD license
package api
