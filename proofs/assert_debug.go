//go:build debugassert

package proofs

// debugAssertBoundsOrdered enforces the engine-maintained invariant
// trusted_left >= zs_right (spec §9) in debug builds only. It is never
// re-asserted in production: the invariant is maintained by construction
// (trusted_left starts at the anchor's seq_no, which is always greater
// than the zerostate, and only shrinks toward it) but a signed-underflow
// bug here would be silent without this build-tag-gated check.
func debugAssertBoundsOrdered(zsRight, trustedLeft uint32) {
	if trustedLeft < zsRight {
		panic("proofs: invariant violated: trusted_left < zs_right")
	}
}
