package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oraichain/tonbridge-core/libs/cell"
	"github.com/oraichain/tonbridge-core/relay"
)

// NewRelayCmd returns the subcommands building relay messages.
func NewRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Build the messages a relayer sends to the bridge contracts",
	}
	cmd.AddCommand(newRelayBlockCmd(), newRelayPacketCmd())
	return cmd
}

func printMessage(cmd *cobra.Command, c *cell.Cell, dump bool) error {
	m, err := relay.ParseMessage(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "op: %v\nquery_id: %d\n", m.Op, m.QueryID)
	printCell(cmd.OutOrStdout(), c, dump)
	return nil
}

func newRelayBlockCmd() *cobra.Command {
	var (
		queryID uint64
		dump    bool
	)
	cmd := &cobra.Command{
		Use:   "block [lightblock.json]",
		Short: "Build the verify_block_hash message of a light block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lb, err := readLightBlock(args[0])
			if err != nil {
				return err
			}
			c, err := relay.EncodeVerifyBlockHash(queryID, lb)
			if err != nil {
				return err
			}
			return printMessage(cmd, c, dump)
		},
	}
	cmd.Flags().Uint64Var(&queryID, "query-id", 0, "query id of the message")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the frame tree")
	return cmd
}

func newRelayPacketCmd() *cobra.Command {
	var (
		queryID uint64
		dump    bool
	)
	cmd := &cobra.Command{
		Use:   "packet [proof.json]",
		Short: "Build the receive_packet message of a packet proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, err := readPacketProof(args[0])
			if err != nil {
				return err
			}
			c, err := relay.EncodeReceivePacket(queryID, proof)
			if err != nil {
				return err
			}
			return printMessage(cmd, c, dump)
		},
	}
	cmd.Flags().Uint64Var(&queryID, "query-id", 0, "query id of the message")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the frame tree")
	return cmd
}
