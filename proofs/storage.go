package proofs

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store is the durable key/value capability this engine is built on (spec
// §6). Both operations may fail with a store-level error; metadataStore
// wraps it with the logical key via errors.Wrapf, and errors.Is /
// errors.Cause still recover the store's own error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Put(ctx context.Context, key string, value []byte) error
}

// Logical key names, namespaced per network by keyspace.key. See spec §3.
const (
	logicalZerostate       = "zerostate"
	logicalZerostateRight  = "zs_right_boundary_seq_no"
	trustedLeftKeyPattern  = "trusted_%d_left_boundary_seq_no"
	trustedRightKeyPattern = "trusted_%d_right_boundary_seq_no"
	mcProofKeyPattern      = "proof_mc_%d"
)

// keyspace namespaces every persisted key by (network_uid, logical_key) as
// `<zs_prefix>/<fmb_prefix>/<logical>`, where each prefix is the first
// eight lowercase hex characters of the corresponding NetworkUID hash.
// Mirrors the teacher's kv.tables.go pattern of a flat namespace of named,
// documented keys, generalized to a per-network prefix instead of a
// compile-time bucket name.
type keyspace struct {
	zsPrefix  string
	fmbPrefix string
}

func newKeyspace(uid NetworkUID) keyspace {
	return keyspace{
		zsPrefix:  hashPrefix(uid.ZerostateRootHash.Hex()),
		fmbPrefix: hashPrefix(uid.FirstMasterBlockRootHash.Hex()),
	}
}

func (k keyspace) key(logical string) string {
	return fmt.Sprintf("%s/%s/%s", k.zsPrefix, k.fmbPrefix, logical)
}

func mcProofKey(seqNo uint32) string {
	return fmt.Sprintf(mcProofKeyPattern, seqNo)
}

func trustedLeftKey(trustedSeqNo uint32) string {
	return fmt.Sprintf(trustedLeftKeyPattern, trustedSeqNo)
}

func trustedRightKey(trustedSeqNo uint32) string {
	return fmt.Sprintf(trustedRightKeyPattern, trustedSeqNo)
}

// metadataStore wraps a Store with the network-prefixed key encoding and
// the u32-bound read/merge/write operations of spec §4.1.
type metadataStore struct {
	store Store
	ks    keyspace
	log   *zap.Logger
}

func newMetadataStore(store Store, uid NetworkUID, log *zap.Logger) *metadataStore {
	return &metadataStore{store: store, ks: newKeyspace(uid), log: log}
}

func (m *metadataStore) get(ctx context.Context, logical string) ([]byte, error) {
	v, err := m.store.Get(ctx, m.ks.key(logical))
	if err != nil {
		return nil, errors.Wrapf(err, "storage get %q", logical)
	}
	return v, nil
}

func (m *metadataStore) put(ctx context.Context, logical string, value []byte) error {
	if err := m.store.Put(ctx, m.ks.key(logical), value); err != nil {
		return errors.Wrapf(err, "storage put %q", logical)
	}
	return nil
}

// getMetadataU32 reads a raw value, returning (0, false, nil) if absent OR
// if the byte length is not exactly 4. A corrupt-length entry is treated as
// "absent" rather than an error, so it self-heals on the next write (spec
// §4.1) — this is the one place this engine silently swallows a condition
// that looks like a fault.
func (m *metadataStore) getMetadataU32(ctx context.Context, logical string) (uint32, bool, error) {
	v, err := m.get(ctx, logical)
	if err != nil {
		return 0, false, err
	}
	if len(v) != 4 {
		return 0, false, nil
	}
	return binary.LittleEndian.Uint32(v), true, nil
}

func (m *metadataStore) putMetadataU32(ctx context.Context, logical string, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return m.put(ctx, logical, buf[:])
}

// updateMetadataU32 reads the current value; if absent, stores v; else
// stores merge(prev, v). Used with max for right bounds and min for left
// bounds. Races merely lose information, never violate the monotone
// invariants (spec §5), so no lock is taken here.
func (m *metadataStore) updateMetadataU32(ctx context.Context, logical string, v uint32, merge func(a, b uint32) uint32) error {
	prev, ok, err := m.getMetadataU32(ctx, logical)
	if err != nil {
		return err
	}
	if !ok {
		return m.putMetadataU32(ctx, logical, v)
	}
	return m.putMetadataU32(ctx, logical, merge(prev, v))
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
