package main

import (
	"fmt"
	"os"

	"github.com/tonlc/proofengine/proofs"
)

// unimplementedCodec stands in for the cryptographic BOC deserializer and
// proof-check oracle (spec §1's explicit external collaborator). This
// module deliberately does not implement TON cell parsing or Merkle/
// signature verification; a real deployment links a genuine ProofCodec
// in its place before calling NewRootCmd.
type unimplementedCodec struct{}

func (unimplementedCodec) DeserializeBlockProof(boc []byte) (proofs.BlockProof, error) {
	return nil, fmt.Errorf("no BOC codec configured: link a real proofs.ProofCodec implementation")
}

func (unimplementedCodec) DeserializeShardState(boc []byte) (proofs.ShardState, error) {
	return nil, fmt.Errorf("no BOC codec configured: link a real proofs.ProofCodec implementation")
}

func (unimplementedCodec) ContentHash(boc []byte) (proofs.Hash256, error) {
	return proofs.Hash256{}, fmt.Errorf("no BOC codec configured: link a real proofs.ProofCodec implementation")
}

func main() {
	root := NewRootCmd(unimplementedCodec{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
