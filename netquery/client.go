package netquery

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/tonlc/proofengine/proofs"
)

// Client implements proofs.ProofQuery (spec §4.2) on top of a
// CollectionQuerier. Rows come back as opaque JSON; fastjson.Parser walks
// them by field path without building a map[string]interface{} tree per
// row, matching spec §6's "fields are accessed by name".
type Client struct {
	q CollectionQuerier
}

func NewClient(q CollectionQuerier) *Client {
	return &Client{q: q}
}

func (c *Client) FetchZerostateBOC(ctx context.Context) ([]byte, error) {
	rows, err := c.q.QueryCollection(ctx, CollectionQueryParams{
		Collection: "zerostates",
		Result:     "boc",
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: dapp server returned no zerostate", proofs.ErrDecode)
	}

	v, err := fastjson.ParseBytes(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proofs.ErrDecode, err)
	}
	boc := v.GetStringBytes("boc")
	if boc == nil {
		return nil, fmt.Errorf("%w: zerostate row missing boc", proofs.ErrDecode)
	}
	return decodeBase64(boc)
}

func (c *Client) FetchBlockProof(ctx context.Context, workchain int32, shard string, seqNo uint32) ([]byte, error) {
	rows, err := c.q.QueryCollection(ctx, CollectionQueryParams{
		Collection: "blocks",
		Result:     "signatures{proof}",
		Filter:     eqFilter("workchain_id", workchain, "shard", shard, "seq_no", seqNo),
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return proofBocFromRow(rows[0])
}

func (c *Client) FetchMcProof(ctx context.Context, seqNo uint32) ([]byte, error) {
	rows, err := c.q.QueryCollection(ctx, CollectionQueryParams{
		Collection: "blocks",
		Result:     "signatures{proof}",
		Filter:     eqFilter("workchain_id", proofs.MasterchainWorkchain, "seq_no", seqNo),
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no proof for masterchain seq_no %d", proofs.ErrDecode, seqNo)
	}
	return proofBocFromRow(rows[0])
}

// FetchKeyBlocks loops because the server may page (spec §4.2): after
// each batch the range's low bound advances past the last seq_no seen,
// until a batch comes back empty.
func (c *Client) FetchKeyBlocks(ctx context.Context, r proofs.SeqNoRange) ([]proofs.SeqNoProof, error) {
	var out []proofs.SeqNoProof
	for !r.Empty() {
		rows, err := c.q.QueryCollection(ctx, CollectionQueryParams{
			Collection: "blocks",
			Result:     "seq_no, signatures{proof}",
			Filter: map[string]interface{}{
				"workchain_id": map[string]interface{}{"eq": proofs.MasterchainWorkchain},
				"key_block":    map[string]interface{}{"eq": true},
				"seq_no":       map[string]interface{}{"ge": r.Start, "lt": r.End},
			},
			Order: []OrderBy{{Path: "seq_no", Direction: SortAsc}},
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return out, nil
		}

		for _, row := range rows {
			v, err := fastjson.ParseBytes(row)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", proofs.ErrDecode, err)
			}
			if !v.Exists("seq_no") {
				return nil, fmt.Errorf("%w: seq_no of block must be an integer", proofs.ErrDecode)
			}
			seqNo := v.GetUint64("seq_no")
			boc := v.GetStringBytes("signatures", "proof")
			if boc == nil {
				return nil, fmt.Errorf("%w: key-block %d missing proof", proofs.ErrDecode, seqNo)
			}
			decoded, err := decodeBase64(boc)
			if err != nil {
				return nil, err
			}
			out = append(out, proofs.SeqNoProof{SeqNo: uint32(seqNo), BOC: decoded})
			r.Start = uint32(seqNo) + 1
		}
	}
	return out, nil
}

// FetchBlocksBySeq loops in batches because the server may return fewer
// rows than requested (spec §4.2): the caller splits the input into
// "taken" and "remaining" by the returned length, and each returned
// seq_no must equal the corresponding expected value. A batch that comes
// back empty while seq_nos remain is ErrMissingBlock.
func (c *Client) FetchBlocksBySeq(ctx context.Context, seqNosSorted []uint32) ([]proofs.SeqNoProof, error) {
	var out []proofs.SeqNoProof
	remaining := seqNosSorted
	for len(remaining) > 0 {
		rows, err := c.q.QueryCollection(ctx, CollectionQueryParams{
			Collection: "blocks",
			Result:     "seq_no, signatures{proof}",
			Filter: map[string]interface{}{
				"workchain_id": map[string]interface{}{"eq": proofs.MasterchainWorkchain},
				"seq_no":       map[string]interface{}{"in": remaining},
			},
			Order: []OrderBy{{Path: "seq_no", Direction: SortAsc}},
		})
		if err != nil {
			return nil, err
		}
		if len(rows) > len(remaining) {
			return nil, fmt.Errorf("%w: dapp server returned more blocks (%d) than expected (%d)",
				proofs.ErrProtocolViolation, len(rows), len(remaining))
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: block with seq_no %d missing on dapp server", proofs.ErrMissingBlock, remaining[0])
		}

		expected, rest := remaining[:len(rows)], remaining[len(rows):]
		for i, row := range rows {
			v, err := fastjson.ParseBytes(row)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", proofs.ErrDecode, err)
			}
			if !v.Exists("seq_no") {
				return nil, fmt.Errorf("%w: seq_no of block must be an integer", proofs.ErrDecode)
			}
			seqNo := v.GetUint64("seq_no")
			if uint32(seqNo) != expected[i] {
				return nil, fmt.Errorf("%w: block with seq_no %d missing on dapp server", proofs.ErrMissingBlock, expected[i])
			}
			boc := v.GetStringBytes("signatures", "proof")
			if boc == nil {
				return nil, fmt.Errorf("%w: block %d missing proof", proofs.ErrDecode, seqNo)
			}
			decoded, err := decodeBase64(boc)
			if err != nil {
				return nil, err
			}
			out = append(out, proofs.SeqNoProof{SeqNo: uint32(seqNo), BOC: decoded})
		}
		remaining = rest
	}
	return out, nil
}

func proofBocFromRow(row []byte) ([]byte, error) {
	v, err := fastjson.ParseBytes(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proofs.ErrDecode, err)
	}
	boc := v.GetStringBytes("signatures", "proof")
	if boc == nil {
		return nil, fmt.Errorf("%w: row missing signatures.proof", proofs.ErrDecode)
	}
	return decodeBase64(boc)
}

func decodeBase64(b []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(out, b)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode: %v", proofs.ErrDecode, err)
	}
	return out[:n], nil
}
