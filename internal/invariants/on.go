//go:build invariants || race

package invariants

import "github.com/cockroachdb/errors"

// Enabled is true if we were built with the "invariants" or "race" build tags.
const Enabled = true

// CheckBounds panics if the index is not in the range [0, n).
func CheckBounds[T Integer](i T, n T) {
	if i < 0 || i >= n {
		panic(errors.AssertionFailedf("index %d out of bounds [0, %d)", i, n))
	}
}

// Assertf panics with an assertion failure if cond is false.
func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}
