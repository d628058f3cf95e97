package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/packet"
)

// NewPacketCmd returns the bridge packet subcommands.
func NewPacketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packet",
		Short: "Bridge packet utilities",
	}
	cmd.AddCommand(newPacketDecodeCmd(), newPacketKeyCmd())
	return cmd
}

func newPacketDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [hex packet]",
		Short: "Decode an encoded packet and print it with its commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := hex.DecodeString(trimHex(args[0]))
			if err != nil {
				return fmt.Errorf("invalid hex packet: %w", err)
			}
			p, err := packet.Decode(bz)
			if err != nil {
				return err
			}
			commitment, err := packet.Commitment(p)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(struct {
				Kind       string           `json:"kind"`
				Commitment tmbytes.HexBytes `json:"commitment"`
				Packet     packet.Packet    `json:"packet"`
			}{p.Kind().String(), commitment, p}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newPacketKeyCmd() *cobra.Command {
	var ack bool
	cmd := &cobra.Command{
		Use:   "key [contract] [sequence]",
		Short: "Print the store key a packet commitment is proven under",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sequence: %w", err)
			}
			keyFn := packet.CommitmentKey
			if ack {
				keyFn = packet.AckCommitmentKey
			}
			key, err := keyFn(args[0], seq)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%X\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ack, "ack", false, "print the acknowledgement commitment key")
	return cmd
}
