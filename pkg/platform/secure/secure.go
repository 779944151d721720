// Package secure holds comparison and lookup primitives whose running time does
// not reveal whether a secret (security code, identifier) matched.
package secure

import (
	"context"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// Equal reports whether a == b. It walks max(len(a), len(b)) bytes and folds
// the length difference into the result, so neither the position of the first
// mismatch nor a length mismatch ends the loop early.
func Equal(a, b string) bool {
	n := max(len(a), len(b))
	diff := uint32(len(a) ^ len(b))
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		diff |= uint32(x ^ y)
	}
	return diff == 0
}

// SearchFunc looks something up and reports whether it was found.
type SearchFunc[T any] func(ctx context.Context) (T, bool, error)

// SearchWithConstantTiming always runs search. When search finds nothing, or
// fails, busyWork runs before returning so a miss costs about as much wall
// time as a hit.
func SearchWithConstantTiming[T any](ctx context.Context, search SearchFunc[T], busyWork func()) (T, bool, error) {
	v, found, err := search(ctx)
	if err != nil || !found {
		if busyWork != nil {
			busyWork()
		}
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// HashBusyWork returns a CPU-bound function that chains BLAKE2b over a
// fixed buffer iterations times.
func HashBusyWork(iterations int) func() {
	return func() {
		var sum [blake2b.Size256]byte
		for i := 0; i < iterations; i++ {
			sum = blake2b.Sum256(sum[:])
		}
		sink.Store(uint32(sum[0]))
	}
}

// sink keeps the compiler from discarding the busy-work loop.
var sink atomic.Uint32
