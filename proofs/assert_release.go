//go:build !debugassert

package proofs

func debugAssertBoundsOrdered(uint32, uint32) {}
