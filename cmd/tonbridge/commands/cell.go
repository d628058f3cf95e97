package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oraichain/tonbridge-core/libs/cell"
)

// NewCellCmd returns the frame tree subcommands.
func NewCellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Frame tree utilities",
	}
	cmd.AddCommand(newCellJSONCmd())
	return cmd
}

func printCell(w io.Writer, c *cell.Cell, dump bool) {
	fmt.Fprintf(w, "hash: %X\ndepth: %d\n", c.Hash(), c.Depth())
	if dump {
		fmt.Fprintln(w, c.String())
	}
}

func newCellJSONCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "json [file]",
		Short: "Encode a JSON document as a frame tree and print its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			v, err := cell.ParseJSON(bz)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			c, err := cell.EncodeJSON(v)
			if err != nil {
				return err
			}
			printCell(cmd.OutOrStdout(), c, dump)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print the frame tree")
	return cmd
}
