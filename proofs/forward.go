package proofs

import (
	"context"

	"go.uber.org/zap"
)

// downloadProofChain extends a verified chain to higher seq_no (spec
// §4.4). It downloads successive key-block proofs in range and chains
// each against its predecessor via the oracle; onStored is invoked after
// each proof is persisted so the caller can push whichever bound this
// chain grows (zs_right or trusted_right) with a monotone-max update.
//
// Persistence is strictly ascending: a later proof is never written
// before an earlier one in the same range, and onStored only fires after
// the write, so a cancelled caller never observes a bound that outruns
// storage.
func (e *Engine) downloadProofChain(ctx context.Context, r SeqNoRange, onStored func(seqNo uint32) error) (BlockProof, error) {
	if r.Empty() {
		return nil, ErrEmptyRange
	}

	keyBlocks, err := e.query.FetchKeyBlocks(ctx, r)
	if err != nil {
		return nil, err
	}

	var last BlockProof
	for _, kb := range keyBlocks {
		proof, err := e.codec.DeserializeBlockProof(kb.BOC)
		if err != nil {
			return nil, err
		}

		if err := proof.CheckProof(ctx, e); err != nil {
			return nil, err
		}

		if err := e.writeStorage(ctx, mcProofKey(kb.SeqNo), kb.BOC); err != nil {
			return nil, err
		}
		if err := onStored(kb.SeqNo); err != nil {
			return nil, err
		}
		e.log.Debug("forward walk stored proof", zap.Uint32("seq_no", kb.SeqNo))

		last = proof
	}

	if last == nil {
		return nil, ErrEmptyChain
	}
	return last, nil
}
