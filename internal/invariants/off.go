//go:build !invariants && !race

package invariants

// Enabled is true if we were built with the "invariants" or "race" build tags.
const Enabled = false

// CheckBounds panics if the index is not in the range [0, n). No-op in
// non-invariant builds.
func CheckBounds[T Integer](i T, n T) {}

// Assertf panics with an assertion failure if cond is false. No-op in
// non-invariant builds.
func Assertf(cond bool, format string, args ...interface{}) {}
