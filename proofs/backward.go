package proofs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// downloadProofChainBackward reconstructs the chain in reverse (spec
// §4.5): to certify a key-block K it combines K's own proof, the proof of
// the block immediately following K (which carries a reference to its
// previous key-block), and the already-certified right-hand key-block
// proof.
//
// Persistence is strictly descending by seq_no, and trustedSeqNo's left
// bound is shrunk toward range.Start via a monotone-min update after each
// key-block is certified.
//
// Spec §9 flags an open question in the source design: zipping K and N
// reversed silently drops trailing pairs if the server fails to return a
// K+1 block for some key-block inside the range. This implementation
// takes the safer path the open question recommends: any length mismatch
// between the key-block list and its successor list is ErrMissingBlock,
// not a silent truncation.
func (e *Engine) downloadProofChainBackward(ctx context.Context, r SeqNoRange, trustedSeqNo uint32) (BlockProof, error) {
	if r.Empty() {
		return nil, ErrEmptyRange
	}

	keyBlocks, err := e.query.FetchKeyBlocks(ctx, r)
	if err != nil {
		return nil, err
	}

	nextSeqNos := make([]uint32, len(keyBlocks))
	for i, kb := range keyBlocks {
		nextSeqNos[i] = kb.SeqNo + 1
	}

	nextBlocks, err := e.query.FetchBlocksBySeq(ctx, nextSeqNos)
	if err != nil {
		return nil, err
	}
	if len(nextBlocks) != len(keyBlocks) {
		return nil, fmt.Errorf("%w: expected %d successor blocks for %d key-blocks, server returned %d",
			ErrMissingBlock, len(keyBlocks), len(keyBlocks), len(nextBlocks))
	}

	rightAnchorBOC, err := e.readStorage(ctx, mcProofKey(r.End))
	if err != nil {
		return nil, err
	}
	if rightAnchorBOC == nil {
		return nil, fmt.Errorf("%w: mc seq_no %d", ErrMissingRightAnchor, r.End)
	}
	rightKeyProof, err := e.codec.DeserializeBlockProof(rightAnchorBOC)
	if err != nil {
		return nil, err
	}

	for i := len(keyBlocks) - 1; i >= 0; i-- {
		keySeqNo, keyBOC := keyBlocks[i].SeqNo, keyBlocks[i].BOC
		nextSeqNo, nextBOC := nextBlocks[i].SeqNo, nextBlocks[i].BOC
		if nextSeqNo != keySeqNo+1 {
			return nil, fmt.Errorf("%w: successor of key-block %d resolved to seq_no %d", ErrMissingBlock, keySeqNo, nextSeqNo)
		}

		keyProof, err := e.codec.DeserializeBlockProof(keyBOC)
		if err != nil {
			return nil, err
		}
		if _, _, err := keyProof.PreCheckBlockProof(); err != nil {
			return nil, err
		}

		nextProof, err := e.codec.DeserializeBlockProof(nextBOC)
		if err != nil {
			return nil, err
		}
		nextBlock, nextInfo, err := nextProof.PreCheckBlockProof()
		if err != nil {
			return nil, err
		}

		if nextInfo.PrevKeyBlockSeqNo() != keySeqNo {
			return nil, fmt.Errorf("%w: block %d's prev key-block is %d, expected %d",
				ErrLinkMismatch, nextSeqNo, nextInfo.PrevKeyBlockSeqNo(), keySeqNo)
		}

		if err := nextProof.CheckWithPrevKeyBlockProofDetailed(ctx, keyProof, nextBlock, nextInfo); err != nil {
			return nil, err
		}

		prevRef, err := nextInfo.PrevRef()
		if err != nil {
			return nil, err
		}
		if prevRef.Kind == PrevRefMerged {
			return nil, ErrUnexpectedMerge
		}

		keyRootHash := keyProof.ID().RootHash
		if prevRef.Prev.RootHash != keyRootHash {
			return nil, fmt.Errorf("%w: successor's prev root_hash %s does not match key-block %d root_hash %s",
				ErrChainBroken, prevRef.Prev.RootHash.Hex(), keySeqNo, keyRootHash.Hex())
		}

		if err := rightKeyProof.CheckWithPrevKeyBlockProof(ctx, keyProof); err != nil {
			return nil, err
		}

		if err := e.writeStorage(ctx, mcProofKey(keySeqNo), keyBOC); err != nil {
			return nil, err
		}
		if err := e.updateTrustedLeftBound(ctx, trustedSeqNo, keySeqNo); err != nil {
			return nil, err
		}
		e.log.Debug("backward walk stored proof", zap.Uint32("seq_no", keySeqNo))

		rightKeyProof = keyProof
	}

	return rightKeyProof, nil
}
