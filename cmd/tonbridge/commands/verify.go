package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oraichain/tonbridge-core/bridge"
	"github.com/oraichain/tonbridge-core/config"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/packet"
	"github.com/oraichain/tonbridge-core/types"
)

// readLightBlock loads a light block in its RPC JSON form.
func readLightBlock(path string) (*types.LightBlock, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lb types.LightBlock
	if err := json.Unmarshal(bz, &lb); err != nil {
		return nil, fmt.Errorf("decode light block %s: %w", path, err)
	}
	if lb.SignedHeader == nil || lb.Header == nil || lb.Commit == nil {
		return nil, fmt.Errorf("light block %s has no signed header", path)
	}
	if lb.ValidatorSet == nil {
		return nil, fmt.Errorf("light block %s has no validator set", path)
	}
	// rebuild the indexes JSON leaves out
	vals, err := types.NewValidatorSet(lb.ValidatorSet.Validators)
	if err != nil {
		return nil, fmt.Errorf("light block %s: %w", path, err)
	}
	lb.ValidatorSet = vals
	return &lb, nil
}

func readPacketProof(path string) (bridge.PacketProof, error) {
	var proof bridge.PacketProof
	bz, err := os.ReadFile(path)
	if err != nil {
		return proof, err
	}
	if err := json.Unmarshal(bz, &proof); err != nil {
		return proof, fmt.Errorf("decode packet proof %s: %w", path, err)
	}
	return proof, nil
}

// NewVerifyUpdateCmd returns the command verifying a light block against the
// persisted light client state.
func NewVerifyUpdateCmd(v *viper.Viper) *cobra.Command {
	var (
		trustHeight int64
		trustHash   string
		now         string
	)
	cmd := &cobra.Command{
		Use:   "verify-update [lightblock.json]",
		Short: "Verify a light block and store its consensus state",
		Long: `Verify a light block and store its consensus state.

The first update of a fresh home directory needs --trust-height and
--trust-hash: they name the block that roots trust. Every later block is
verified against the stored states.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := ParseConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, conf)
			if err != nil {
				return err
			}
			ts, err := parseNow(now)
			if err != nil {
				return err
			}
			lb, err := readLightBlock(args[0])
			if err != nil {
				return err
			}

			client, db, err := newLightClient(conf, logger, conf.Instrumentation.Metrics())
			if err != nil {
				return err
			}
			defer db.Close()

			if trustHeight > 0 {
				hash, err := hex.DecodeString(trimHex(trustHash))
				if err != nil {
					return fmt.Errorf("invalid --trust-hash: %w", err)
				}
				opts := light.TrustOptions{Height: trustHeight, Hash: hash}
				if err := client.Initialize(cmd.Context(), opts, lb, ts); err != nil {
					return err
				}
			} else if err := client.VerifyLightBlock(cmd.Context(), lb, ts); err != nil {
				return err
			}

			state, err := client.TrustedState()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified height %d (%X), trusted height %d\n",
				lb.Height, lb.Hash(), state.TrustedHeight())
			return nil
		},
	}
	cmd.Flags().Int64Var(&trustHeight, "trust-height", 0, "height of the block rooting trust")
	cmd.Flags().StringVar(&trustHash, "trust-hash", "", "hex hash of the block rooting trust")
	cmd.Flags().StringVar(&now, "now", "", "RFC3339 time to verify at (default: wall clock)")
	return cmd
}

// NewVerifyPacketCmd returns the command checking a packet proof against the
// app hash trusted at its height.
func NewVerifyPacketCmd(v *viper.Viper) *cobra.Command {
	var (
		dryRun bool
		now    string
	)
	cmd := &cobra.Command{
		Use:   "verify-packet [proof.json]",
		Short: "Verify a bridge packet against a trusted app hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := ParseConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, conf)
			if err != nil {
				return err
			}
			ts, err := parseNow(now)
			if err != nil {
				return err
			}
			proof, err := readPacketProof(args[0])
			if err != nil {
				return err
			}
			specs, err := conf.Bridge.Specs()
			if err != nil {
				return err
			}

			metrics := conf.Instrumentation.Metrics()
			client, lightDB, err := newLightClient(conf, logger, metrics)
			if err != nil {
				return err
			}
			defer lightDB.Close()
			packetDB, err := openDB(conf, config.PacketDBName)
			if err != nil {
				return err
			}
			defer packetDB.Close()

			r, err := bridge.NewReceiver(conf.Bridge.Contract, client, packet.NewSeqStore(packetDB, "seq"),
				bridge.ProofSpecs(specs...),
				bridge.Logger(logger.With("module", "bridge")),
				bridge.WithMetrics(metrics),
			)
			if err != nil {
				return err
			}
			if dryRun {
				err = r.VerifyPacket(cmd.Context(), proof, ts)
			} else {
				err = r.Receive(cmd.Context(), proof, ts)
			}
			if err != nil {
				return err
			}

			commitment, err := packet.Commitment(proof.Packet)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified %s packet %d at height %d, commitment %X\n",
				proof.Packet.Kind(), proof.Packet.Sequence(), proof.Height, commitment)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "verify without recording the sequence")
	cmd.Flags().StringVar(&now, "now", "", "RFC3339 time to check timeouts at (default: wall clock)")
	return cmd
}
