package proofs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tonlc/proofengine/internal/xmath"
)

// Engine is the light-client proof-verification engine of spec §2. It is
// safe for concurrent use: every public method is a suspendable operation
// that may await network and storage I/O, and a singleflight.Group
// collapses concurrent callers asking for the same key onto one round
// trip (spec §5 — "no in-memory cache of proofs beyond what is returned
// to the caller", which singleflight respects: once the shared call
// returns, the group forgets the key).
type Engine struct {
	networkUID    NetworkUID
	trustedAnchor TrustedMcBlockId

	meta  *metadataStore
	store Store
	query ProofQuery
	codec ProofCodec
	log   *zap.Logger

	sf singleflight.Group
}

// AnchorResolver resolves the pinned trusted key-block for a network.
// Implemented by *config.AnchorTable; kept as an interface here so proofs
// has no import on config.
type AnchorResolver interface {
	Resolve(uid NetworkUID) (TrustedMcBlockId, error)
}

// NewEngine constructs an Engine for a single network. anchors.Resolve is
// called once, at construction, since pinned anchors are process-wide
// constant data (spec §9) — not re-resolved on every call.
func NewEngine(uid NetworkUID, anchors AnchorResolver, store Store, query ProofQuery, codec ProofCodec, log *zap.Logger) (*Engine, error) {
	anchor, err := anchors.Resolve(uid)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		networkUID:    uid,
		trustedAnchor: anchor,
		meta:          newMetadataStore(store, uid, log),
		store:         store,
		query:         query,
		codec:         codec,
		log:           log,
	}, nil
}

func (e *Engine) readStorage(ctx context.Context, logical string) ([]byte, error) {
	return e.meta.get(ctx, logical)
}

func (e *Engine) writeStorage(ctx context.Context, logical string, value []byte) error {
	return e.meta.put(ctx, logical, value)
}

func (e *Engine) readZsRightBound(ctx context.Context) (uint32, error) {
	v, ok, err := e.meta.getMetadataU32(ctx, logicalZerostateRight)
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

func (e *Engine) updateZsRightBound(ctx context.Context, seqNo uint32) error {
	return e.meta.updateMetadataU32(ctx, logicalZerostateRight, seqNo, maxU32)
}

func (e *Engine) readTrustedLeftBound(ctx context.Context, trustedSeqNo uint32) (uint32, error) {
	v, ok, err := e.meta.getMetadataU32(ctx, trustedLeftKey(trustedSeqNo))
	if err != nil {
		return 0, err
	}
	if !ok {
		return trustedSeqNo, nil
	}
	return v, nil
}

func (e *Engine) updateTrustedLeftBound(ctx context.Context, trustedSeqNo, leftSeqNo uint32) error {
	return e.meta.updateMetadataU32(ctx, trustedLeftKey(trustedSeqNo), leftSeqNo, minU32)
}

func (e *Engine) readTrustedRightBound(ctx context.Context, trustedSeqNo uint32) (uint32, error) {
	v, ok, err := e.meta.getMetadataU32(ctx, trustedRightKey(trustedSeqNo))
	if err != nil {
		return 0, err
	}
	if !ok {
		return trustedSeqNo, nil
	}
	return v, nil
}

func (e *Engine) updateTrustedRightBound(ctx context.Context, trustedSeqNo, rightSeqNo uint32) error {
	return e.meta.updateMetadataU32(ctx, trustedRightKey(trustedSeqNo), rightSeqNo, maxU32)
}

// LoadKeyBlockProof is the engine's entry point (spec §4.6): is masterchain
// key-block seqNo authentic on this network? Decides, from cached bounds
// and anchors, which walk direction to invoke.
func (e *Engine) LoadKeyBlockProof(ctx context.Context, seqNo uint32) (BlockProof, error) {
	v, err, _ := e.sf.Do(fmt.Sprintf("load:%d", seqNo), func() (interface{}, error) {
		return e.loadKeyBlockProof(ctx, seqNo)
	})
	if err != nil {
		return nil, err
	}
	return v.(BlockProof), nil
}

func (e *Engine) loadKeyBlockProof(ctx context.Context, seqNo uint32) (BlockProof, error) {
	if boc, err := e.readStorage(ctx, mcProofKey(seqNo)); err != nil {
		return nil, err
	} else if boc != nil {
		return e.codec.DeserializeBlockProof(boc)
	}

	anchor := e.trustedAnchor
	zsRight, err := e.readZsRightBound(ctx)
	if err != nil {
		return nil, err
	}
	trustedLeft, err := e.readTrustedLeftBound(ctx, anchor.SeqNo)
	if err != nil {
		return nil, err
	}
	trustedRight, err := e.readTrustedRightBound(ctx, anchor.SeqNo)
	if err != nil {
		return nil, err
	}

	if seqNo == anchor.SeqNo {
		return e.downloadTrustedKeyBlockProof(ctx, anchor)
	}

	if _, err := e.requireTrustedKeyBlockProof(ctx, anchor); err != nil {
		return nil, err
	}

	debugAssertBoundsOrdered(zsRight, trustedLeft)

	updateTrustedRight := func(n uint32) error { return e.updateTrustedRightBound(ctx, anchor.SeqNo, n) }
	updateZsRight := func(n uint32) error { return e.updateZsRightBound(ctx, n) }

	switch {
	case seqNo > trustedRight:
		e.log.Debug("resolving forward from trusted right bound", zap.Uint32("seq_no", seqNo), zap.Uint32("trusted_right", trustedRight))
		return e.downloadProofChain(ctx, SeqNoRange{Start: trustedRight, End: seqNo + 1}, updateTrustedRight)

	case seqNo < zsRight+xmath.AbsoluteDifference(trustedLeft, zsRight)/2:
		e.log.Debug("resolving forward from zerostate side", zap.Uint32("seq_no", seqNo), zap.Uint32("zs_right", zsRight))
		return e.downloadProofChain(ctx, SeqNoRange{Start: zsRight + 1, End: seqNo + 1}, updateZsRight)

	case seqNo < trustedLeft:
		e.log.Debug("resolving backward toward trusted left bound", zap.Uint32("seq_no", seqNo), zap.Uint32("trusted_left", trustedLeft))
		return e.downloadProofChainBackward(ctx, SeqNoRange{Start: seqNo, End: trustedLeft}, anchor.SeqNo)

	case seqNo <= zsRight:
		e.log.Warn("repairing zerostate chain", zap.Uint32("seq_no", seqNo))
		return e.downloadProofChain(ctx, SeqNoRange{Start: 1, End: seqNo + 1}, updateZsRight)

	case seqNo >= trustedLeft && seqNo <= anchor.SeqNo:
		e.log.Warn("repairing trusted-left chain", zap.Uint32("seq_no", seqNo))
		return e.downloadProofChainBackward(ctx, SeqNoRange{Start: seqNo, End: anchor.SeqNo}, anchor.SeqNo)

	case seqNo > anchor.SeqNo && seqNo <= trustedRight:
		e.log.Warn("repairing trusted-right chain", zap.Uint32("seq_no", seqNo))
		return e.downloadProofChain(ctx, SeqNoRange{Start: anchor.SeqNo + 1, End: seqNo + 1}, updateTrustedRight)

	default:
		return nil, fmt.Errorf("%w: seq_no=%d zs_right=%d trusted_left=%d trusted_right=%d trusted_seq_no=%d",
			ErrInternal, seqNo, zsRight, trustedLeft, trustedRight, anchor.SeqNo)
	}
}
