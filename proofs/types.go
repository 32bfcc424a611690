// Copyright 2024 The Erigon Authors
// (original work)
// Copyright 2026 The TON Light Client Authors
// (modifications)
// This file is part of proofengine.
//
// proofengine is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// proofengine is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with proofengine. If not, see <http://www.gnu.org/licenses/>.

// Package proofs implements the masterchain light-client proof-verification
// engine: given an untrusted remote data source it chains validator-signed
// key-block proofs back to a network's zerostate or a pinned trusted
// key-block, caching verified results in a durable store.
package proofs

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

// Hash256 is a masterchain content hash: a block root hash, a zerostate
// root hash, or the hash identifying a network.
type Hash256 [32]byte

func (h Hash256) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash256) String() string { return h.Hex() }

// ParseHash256 decodes a lowercase hex-encoded 256-bit hash, as used for
// compile-time-pinned trusted key-block ids.
func ParseHash256(s string) (Hash256, error) {
	var h Hash256
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrapf(err, "parsing hash256 %q", s)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("hash256 %q: expected %d bytes, got %d", s, len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// hashPrefix returns the first 8 lowercase hex characters of h, defensively
// handling hashes shorter than 4 bytes (mirrors the original's
// `&root_hash[..min(8, len)]`, which this engine has no way to hit in
// practice since Hash256 is fixed-size, but the helper keeps the same
// shape as ton_client's gen_root_hash_prefix for any future variable-width
// identifier).
func hashPrefix(hx string) string {
	if len(hx) > 8 {
		return hx[:8]
	}
	return hx
}

// NetworkUID is the immutable identity of a network, derived once per
// client session from its zerostate and first masterchain block.
type NetworkUID struct {
	ZerostateRootHash        Hash256
	FirstMasterBlockRootHash Hash256
}

// TrustedMcBlockId is a compile-time-pinned anchor: a masterchain key-block
// more recent than the zerostate that the engine trusts without having to
// walk the full chain from genesis.
type TrustedMcBlockId struct {
	SeqNo    uint32
	RootHash Hash256
}

// Workchain identifiers. Only the masterchain is ever verified by this
// engine; Workchain is carried on BlockProofID purely for assertion.
const MasterchainWorkchain int32 = -1

// BlockProofID identifies the block a BlockProof attests to.
type BlockProofID struct {
	SeqNo     uint32
	RootHash  Hash256
	Workchain int32
}

// PrevRefKind distinguishes a normal single-parent link from a masterchain
// merge, which must never occur.
type PrevRefKind int

const (
	PrevRefSingle PrevRefKind = iota
	PrevRefMerged
)

// PrevRef is the previous-block reference carried by a block's info
// section. The masterchain never merges, so PrevRefMerged is always a
// protocol violation when observed there (see backward walk step 5d).
type PrevRef struct {
	Kind   PrevRefKind
	Prev   BlockProofID   // valid when Kind == PrevRefSingle
	Merged []BlockProofID // valid when Kind == PrevRefMerged
}

// BlockInfo is the subset of a block's header the backward walk needs:
// which key-block it descends from, and how.
type BlockInfo interface {
	PrevKeyBlockSeqNo() uint32
	PrevRef() (PrevRef, error)
}

// Block is the deserialized block body paired with a BlockInfo by
// PreCheckBlockProof. The engine never inspects it beyond passing it back
// into the oracle.
type Block interface {
	BlockProofID() BlockProofID
}

// BlockProof is an opaque, oracle-verified proof for a single masterchain
// block, constructed by deserializing a BOC blob. The cryptographic
// verification performed by CheckProof and CheckWithPrevKeyBlockProof is
// out of this engine's scope (spec §1); BlockProof is the capability
// surface the engine drives.
type BlockProof interface {
	ID() BlockProofID
	Bytes() []byte

	PreCheckBlockProof() (Block, BlockInfo, error)
	CheckProof(ctx context.Context, engine Resolver) error
	CheckWithPrevKeyBlockProof(ctx context.Context, prev BlockProof) error
	CheckWithPrevKeyBlockProofDetailed(ctx context.Context, prev BlockProof, nextBlock Block, nextInfo BlockInfo) error
}

// ShardState is the deserialized zerostate. The engine only needs to hand
// it back to the caller; its structure is otherwise opaque here.
type ShardState interface {
	RootHash() Hash256
}

// ProofCodec deserializes BOC blobs into the oracle types above and
// computes their content hash. It is the "cryptographic primitive...
// treated as an oracle" of spec §1/§3; this engine never parses cell data
// itself.
type ProofCodec interface {
	DeserializeBlockProof(boc []byte) (BlockProof, error)
	DeserializeShardState(boc []byte) (ShardState, error)
	ContentHash(boc []byte) (Hash256, error)
}

// Resolver is the subset of Engine that BlockProof.CheckProof recurses
// into: verifying a proof may itself require the previous key-block's
// proof, which is resolved the same way any other seq_no is (cache hit,
// or a fresh walk).
type Resolver interface {
	LoadKeyBlockProof(ctx context.Context, seqNo uint32) (BlockProof, error)
}
