package proofs

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
)

// fakeStore is an in-memory Store, the test-side stand-in for the teacher's
// own pattern of hand-rolled fakes (tests/state_test_util.go) rather than a
// mocking framework.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *fakeStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// seqHash deterministically derives a root hash for a synthetic seq_no, so
// tests never need to hand-write 64 hex characters per block.
func seqHash(seqNo uint32) Hash256 {
	return sha256.Sum256([]byte(fmt.Sprintf("seq-%d", seqNo)))
}

type fakeBlockData struct {
	SeqNo             uint32 `json:"seq_no"`
	RootHash          string `json:"root_hash"`
	Workchain         int32  `json:"workchain"`
	PrevKeyBlockSeqNo uint32 `json:"prev_key_block_seqno"`
	PrevRefMerged     bool   `json:"prev_ref_merged"`
	PrevRootHash      string `json:"prev_root_hash"`
}

func encodeFakeBlock(d fakeBlockData) []byte {
	b, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	return b
}

// fakeOracle is the shared, test-controlled "cryptographic primitive"
// behind every fakeBlockProof: by default it accepts every link, matching
// spec §8's "mocking the oracle to accept all links". Tests exercising
// ErrOracleRejected populate reject with the seq_no to refuse.
type fakeOracle struct {
	reject map[uint32]bool
}

func (o *fakeOracle) shouldReject(seqNo uint32) bool {
	return o != nil && o.reject[seqNo]
}

type fakeBlockProof struct {
	data   fakeBlockData
	raw    []byte
	oracle *fakeOracle
}

func (p *fakeBlockProof) ID() BlockProofID {
	h, err := ParseHash256(p.data.RootHash)
	if err != nil {
		panic(err)
	}
	return BlockProofID{SeqNo: p.data.SeqNo, RootHash: h, Workchain: p.data.Workchain}
}

func (p *fakeBlockProof) Bytes() []byte { return p.raw }

func (p *fakeBlockProof) PreCheckBlockProof() (Block, BlockInfo, error) {
	return p, p, nil
}

func (p *fakeBlockProof) BlockProofID() BlockProofID { return p.ID() }

func (p *fakeBlockProof) PrevKeyBlockSeqNo() uint32 { return p.data.PrevKeyBlockSeqNo }

func (p *fakeBlockProof) PrevRef() (PrevRef, error) {
	if p.data.PrevRefMerged {
		return PrevRef{Kind: PrevRefMerged}, nil
	}
	h, err := ParseHash256(p.data.PrevRootHash)
	if err != nil {
		return PrevRef{}, err
	}
	return PrevRef{Kind: PrevRefSingle, Prev: BlockProofID{RootHash: h}}, nil
}

func (p *fakeBlockProof) CheckProof(_ context.Context, _ Resolver) error {
	if p.oracle.shouldReject(p.data.SeqNo) {
		return fmt.Errorf("%w: seq_no %d", ErrOracleRejected, p.data.SeqNo)
	}
	return nil
}

func (p *fakeBlockProof) CheckWithPrevKeyBlockProof(_ context.Context, _ BlockProof) error {
	if p.oracle.shouldReject(p.data.SeqNo) {
		return fmt.Errorf("%w: seq_no %d", ErrOracleRejected, p.data.SeqNo)
	}
	return nil
}

func (p *fakeBlockProof) CheckWithPrevKeyBlockProofDetailed(_ context.Context, _ BlockProof, _ Block, _ BlockInfo) error {
	if p.oracle.shouldReject(p.data.SeqNo) {
		return fmt.Errorf("%w: seq_no %d", ErrOracleRejected, p.data.SeqNo)
	}
	return nil
}

type fakeShardState struct{ root Hash256 }

func (s fakeShardState) RootHash() Hash256 { return s.root }

type fakeCodec struct {
	oracle       *fakeOracle
	zerostateBOC []byte
}

func (c *fakeCodec) DeserializeBlockProof(boc []byte) (BlockProof, error) {
	var d fakeBlockData
	if err := json.Unmarshal(boc, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &fakeBlockProof{data: d, raw: boc, oracle: c.oracle}, nil
}

func (c *fakeCodec) DeserializeShardState(boc []byte) (ShardState, error) {
	h, err := c.ContentHash(boc)
	if err != nil {
		return nil, err
	}
	return fakeShardState{root: h}, nil
}

func (c *fakeCodec) ContentHash(boc []byte) (Hash256, error) {
	return sha256.Sum256(boc), nil
}

// fakeQuery is a synthetic DApp server: a fixed set of masterchain blocks,
// a subset of which are key-blocks, served through the ProofQuery contract.
type fakeQuery struct {
	mu             sync.Mutex
	blocks         map[uint32][]byte
	keyBlockSeqNos map[uint32]bool
	zerostateBOC   []byte
	missingNext    map[uint32]bool // simulate a server that omits a successor block

	mcProofCalls     int
	keyBlocksCalls   int
	blocksBySeqCalls int
	zerostateCalls   int
}

func newFakeQuery(zerostateBOC []byte) *fakeQuery {
	return &fakeQuery{
		blocks:         make(map[uint32][]byte),
		keyBlockSeqNos: make(map[uint32]bool),
		zerostateBOC:   zerostateBOC,
		missingNext:    make(map[uint32]bool),
	}
}

func (q *fakeQuery) addKeyBlock(seqNo uint32, prevKeySeqNo uint32) {
	q.addBlock(seqNo, prevKeySeqNo, false, Hash256{})
	q.keyBlockSeqNos[seqNo] = true
}

// addSuccessor adds the non-key-block that immediately follows a
// key-block, carrying the link the backward walk verifies.
func (q *fakeQuery) addSuccessor(seqNo, prevKeyBlockSeqNo uint32, prevRootHash Hash256) {
	q.addBlock(seqNo, prevKeyBlockSeqNo, false, prevRootHash)
}

func (q *fakeQuery) addBlock(seqNo, prevKeySeqNo uint32, merged bool, prevRootHash Hash256) {
	d := fakeBlockData{
		SeqNo:             seqNo,
		RootHash:          seqHash(seqNo).Hex(),
		Workchain:         MasterchainWorkchain,
		PrevKeyBlockSeqNo: prevKeySeqNo,
		PrevRefMerged:     merged,
	}
	if !merged {
		if prevRootHash == (Hash256{}) {
			prevRootHash = seqHash(prevKeySeqNo)
		}
		d.PrevRootHash = prevRootHash.Hex()
	}
	q.blocks[seqNo] = encodeFakeBlock(d)
}

func (q *fakeQuery) FetchZerostateBOC(_ context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.zerostateCalls++
	return q.zerostateBOC, nil
}

func (q *fakeQuery) FetchBlockProof(_ context.Context, _ int32, _ string, _ uint32) ([]byte, error) {
	return nil, fmt.Errorf("fakeQuery: FetchBlockProof not used in these tests")
}

func (q *fakeQuery) FetchMcProof(_ context.Context, seqNo uint32) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mcProofCalls++
	boc, ok := q.blocks[seqNo]
	if !ok {
		return nil, fmt.Errorf("%w: no mc proof for seq_no %d", ErrDecode, seqNo)
	}
	return boc, nil
}

func (q *fakeQuery) FetchKeyBlocks(_ context.Context, r SeqNoRange) ([]SeqNoProof, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keyBlocksCalls++
	var out []SeqNoProof
	for seqNo := range q.keyBlockSeqNos {
		if seqNo >= r.Start && seqNo < r.End {
			out = append(out, SeqNoProof{SeqNo: seqNo, BOC: q.blocks[seqNo]})
		}
	}
	sortSeqNoProofs(out)
	return out, nil
}

func (q *fakeQuery) FetchBlocksBySeq(_ context.Context, seqNos []uint32) ([]SeqNoProof, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blocksBySeqCalls++
	var out []SeqNoProof
	for _, seqNo := range seqNos {
		if q.missingNext[seqNo] {
			continue
		}
		boc, ok := q.blocks[seqNo]
		if !ok {
			continue
		}
		out = append(out, SeqNoProof{SeqNo: seqNo, BOC: boc})
	}
	return out, nil
}

func sortSeqNoProofs(s []SeqNoProof) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].SeqNo > s[j].SeqNo; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

type fakeAnchors struct {
	anchor TrustedMcBlockId
	uid    NetworkUID
}

func (a fakeAnchors) Resolve(uid NetworkUID) (TrustedMcBlockId, error) {
	if uid != a.uid {
		return TrustedMcBlockId{}, ErrNoTrustedAnchor
	}
	return a.anchor, nil
}
