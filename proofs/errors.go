package proofs

import "errors"

// Error taxonomy per spec §7. Sentinel values are wrapped with
// fmt.Errorf's %w where context is added, so errors.Is still matches the
// sentinel through the wrapping.
var (
	// ErrNetwork: transport failed; recoverable by retry at the caller's level.
	ErrNetwork = errors.New("proofs: network error")

	// ErrDecode: remote data lacked an expected field or was malformed.
	ErrDecode = errors.New("proofs: decode error")

	// ErrHashMismatch: zerostate hash did not match the network's pin.
	ErrHashMismatch = errors.New("proofs: hash mismatch")

	// ErrAnchorMismatch: downloaded trusted-block proof did not match its pin.
	ErrAnchorMismatch = errors.New("proofs: anchor mismatch")

	// ErrOracleRejected: the proof oracle refused a proof.
	ErrOracleRejected = errors.New("proofs: oracle rejected proof")

	// ErrLinkMismatch: a key-block's successor does not reference it.
	ErrLinkMismatch = errors.New("proofs: link mismatch")

	// ErrChainBroken: a reconstructed link's root hash does not match.
	ErrChainBroken = errors.New("proofs: chain broken")

	// ErrUnexpectedMerge: a masterchain block claims a merge parent.
	ErrUnexpectedMerge = errors.New("proofs: unexpected merge in masterchain")

	// ErrEmptyRange: a walk was asked to cover an empty seq_no range.
	ErrEmptyRange = errors.New("proofs: empty seq_no range")

	// ErrEmptyChain: a forward walk's range produced no key-blocks at all.
	ErrEmptyChain = errors.New("proofs: empty proof chain")

	// ErrMissingRightAnchor: backward walk could not load its right anchor.
	ErrMissingRightAnchor = errors.New("proofs: missing right anchor proof")

	// ErrMissingBlock: the server omitted a block the caller required.
	ErrMissingBlock = errors.New("proofs: missing block")

	// ErrProtocolViolation: the server's response violated its own contract.
	ErrProtocolViolation = errors.New("proofs: protocol violation")

	// ErrNoTrustedAnchor: no pinned trusted key-block configured for this network.
	ErrNoTrustedAnchor = errors.New("proofs: no trusted key-block pinned for network")

	// ErrInternal: an invariant the resolver believed exhaustive was not.
	ErrInternal = errors.New("proofs: internal error")
)
