// Package main is the lightproof composition root: it wires the proofs
// engine to a SQLite store, an HTTP-backed collection query client and a
// configured logger, the way erigon's own cmd/ binaries assemble a node
// from its component packages behind a cobra command tree.
package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tonlc/proofengine/config"
	"github.com/tonlc/proofengine/internal/xmath"
	"github.com/tonlc/proofengine/kvstore"
	"github.com/tonlc/proofengine/netquery"
	"github.com/tonlc/proofengine/proofs"
	"github.com/tonlc/proofengine/telemetry"
)

var (
	flagDBPath   string
	flagEndpoint string
	flagOverlay  string
	flagLogLevel string
)

// NewRootCmd builds the lightproof command tree. codec supplies the
// cryptographic BOC deserialization and proof-check oracle (spec §1's
// explicit external collaborator) — this module never implements it, so
// callers embedding this command must provide a real one.
func NewRootCmd(codec proofs.ProofCodec) *cobra.Command {
	root := &cobra.Command{
		Use:   "lightproof",
		Short: "Masterchain light-client proof verification",
	}
	root.PersistentFlags().StringVar(&flagDBPath, "db", "lightproof.db", "path to the local proof store")
	root.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "DApp server collection-query endpoint")
	root.PersistentFlags().StringVar(&flagOverlay, "network-overlay", "", "optional YAML file with additional network anchor pins")
	root.PersistentFlags().StringVar(&flagLogLevel, "log.level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newCheckCmd(codec))
	return root
}

func newCheckCmd(codec proofs.ProofCodec) *cobra.Command {
	return &cobra.Command{
		Use:   "check <network> <seq_no>",
		Short: "Resolve and verify a masterchain key-block proof by sequence number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			networkName, seqNo, err := parseCheckArgs(args)
			if err != nil {
				return err
			}

			log := telemetry.New(telemetry.Level(flagLogLevel))
			defer log.Sync()

			anchors := builtinAnchorTable()
			if flagOverlay != "" {
				if err := anchors.LoadOverlay(flagOverlay); err != nil {
					return err
				}
			}

			uid, ok := builtinNetworks()[networkName]
			if !ok {
				return fmt.Errorf("unknown network %q", networkName)
			}

			store, err := kvstore.Open(flagDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if flagEndpoint == "" {
				return fmt.Errorf("--endpoint is required")
			}
			query := netquery.NewClient(netquery.NewHTTPQuerier(flagEndpoint, http.DefaultClient))

			engine, err := proofs.NewEngine(uid, anchors, store, query, codec, log)
			if err != nil {
				return err
			}

			proof, err := engine.LoadKeyBlockProof(cmd.Context(), seqNo)
			if err != nil {
				return err
			}
			id := proof.ID()
			fmt.Fprintf(cmd.OutOrStdout(), "verified key-block seq_no=%d root_hash=%s workchain=%d\n",
				id.SeqNo, id.RootHash.Hex(), id.Workchain)
			return nil
		},
	}
}

func parseCheckArgs(args []string) (network string, seqNo uint32, err error) {
	seqNo, err = xmath.ParseUint32(args[1])
	if err != nil {
		return "", 0, err
	}
	return args[0], seqNo, nil
}

// builtinAnchorTable is a placeholder compiled-in pin set; a real
// deployment fills this with the network's genuine trusted anchors.
func builtinAnchorTable() *config.AnchorTable {
	return config.NewAnchorTable(map[proofs.NetworkUID]proofs.TrustedMcBlockId{})
}

func builtinNetworks() map[string]proofs.NetworkUID {
	return map[string]proofs.NetworkUID{}
}
