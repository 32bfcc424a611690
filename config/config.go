// Package config holds the process-wide, immutable mapping from a
// network's identity to its pinned trusted key-block anchor (spec §6,
// §9 "Pinned anchors are process-wide constant data ... a plain immutable
// lookup, not global mutable state").
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tonlc/proofengine/proofs"
)

// AnchorTable maps a network to its pinned trusted key-block. It is built
// once from the compiled-in defaults, optionally extended (never
// overridden) by a YAML overlay file.
type AnchorTable struct {
	entries map[proofs.NetworkUID]proofs.TrustedMcBlockId
}

// overlayFile is the on-disk shape accepted by LoadOverlay: operators may
// pin additional networks without recompiling. Hex strings, not raw
// bytes, since this is the only place a human edits the table.
type overlayFile struct {
	Networks []struct {
		ZerostateRootHash        string `yaml:"zerostate_root_hash"`
		FirstMasterBlockRootHash string `yaml:"first_master_block_root_hash"`
		TrustedSeqNo             uint32 `yaml:"trusted_seq_no"`
		TrustedRootHash          string `yaml:"trusted_root_hash"`
	} `yaml:"networks"`
}

// NewAnchorTable builds a table from compiled-in entries. The map is
// copied, so later changes to it (or overlays loaded into the table) do
// not affect each other.
func NewAnchorTable(entries map[proofs.NetworkUID]proofs.TrustedMcBlockId) *AnchorTable {
	t := &AnchorTable{entries: make(map[proofs.NetworkUID]proofs.TrustedMcBlockId, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// LoadOverlay adds entries from a YAML file to the table. A network
// already present (compiled-in or from an earlier overlay) is left
// untouched: overlays only add pins, they never override one.
func (t *AnchorTable) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading anchor overlay %q", path)
	}
	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "parsing anchor overlay %q", path)
	}
	for _, n := range f.Networks {
		zs, err := proofs.ParseHash256(n.ZerostateRootHash)
		if err != nil {
			return errors.Wrapf(err, "overlay network zerostate_root_hash")
		}
		fmb, err := proofs.ParseHash256(n.FirstMasterBlockRootHash)
		if err != nil {
			return errors.Wrapf(err, "overlay network first_master_block_root_hash")
		}
		root, err := proofs.ParseHash256(n.TrustedRootHash)
		if err != nil {
			return errors.Wrapf(err, "overlay network trusted_root_hash")
		}
		uid := proofs.NetworkUID{ZerostateRootHash: zs, FirstMasterBlockRootHash: fmb}
		if _, exists := t.entries[uid]; exists {
			continue
		}
		t.entries[uid] = proofs.TrustedMcBlockId{SeqNo: n.TrustedSeqNo, RootHash: root}
	}
	return nil
}

// Resolve returns the pinned trusted key-block for uid, or
// proofs.ErrNoTrustedAnchor if this network has no configured anchor.
func (t *AnchorTable) Resolve(uid proofs.NetworkUID) (proofs.TrustedMcBlockId, error) {
	anchor, ok := t.entries[uid]
	if !ok {
		return proofs.TrustedMcBlockId{}, fmt.Errorf("%w: %s/%s", proofs.ErrNoTrustedAnchor,
			uid.ZerostateRootHash.Hex(), uid.FirstMasterBlockRootHash.Hex())
	}
	return anchor, nil
}
