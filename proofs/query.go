package proofs

import "context"

// SeqNoRange is a half-open masterchain seq_no range [Start, End).
type SeqNoRange struct {
	Start uint32
	End   uint32
}

func (r SeqNoRange) Empty() bool { return r.Start >= r.End }

// SeqNoProof pairs a masterchain seq_no with its raw proof BOC.
type SeqNoProof struct {
	SeqNo uint32
	BOC   []byte
}

// ProofQuery is the remote collection-query surface (spec §4.2). All
// methods may fail with an error wrapping ErrNetwork or ErrDecode. The
// transport itself (a GraphQL-like filtered collection query) is out of
// this engine's scope (spec §1); ProofQuery is the capability the engine
// is built against, concretely served by package netquery.
//
// FetchKeyBlocks and FetchBlocksBySeq already perform whatever paging the
// remote server requires internally: callers see one contiguous-enough
// (but not necessarily exhaustive) batch per call, per spec §4.2.
type ProofQuery interface {
	FetchZerostateBOC(ctx context.Context) ([]byte, error)
	FetchBlockProof(ctx context.Context, workchain int32, shard string, seqNo uint32) ([]byte, error) // nil, nil on miss
	FetchMcProof(ctx context.Context, seqNo uint32) ([]byte, error)
	FetchKeyBlocks(ctx context.Context, r SeqNoRange) ([]SeqNoProof, error)
	FetchBlocksBySeq(ctx context.Context, seqNosSorted []uint32) ([]SeqNoProof, error)
}
