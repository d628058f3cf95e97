package commands

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/tx"
)

// NewTxCmd returns the transaction subcommands.
func NewTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Cosmos transaction utilities",
	}
	cmd.AddCommand(newTxHashCmd())
	return cmd
}

type txMessage struct {
	TypeURL  string          `json:"type_url"`
	Sender   string          `json:"sender,omitempty"`
	Contract string          `json:"contract,omitempty"`
	Msg      json.RawMessage `json:"msg,omitempty"`
	Funds    tx.Coins        `json:"funds,omitempty"`
}

type txSummary struct {
	Hash          tmbytes.HexBytes `json:"hash"`
	Memo          string           `json:"memo,omitempty"`
	TimeoutHeight uint64           `json:"timeout_height,string"`
	Messages      []txMessage      `json:"messages"`
	Fee           *tx.Fee          `json:"fee,omitempty"`
	Signatures    int              `json:"signatures"`
}

func summarizeTx(bz []byte) (*txSummary, error) {
	d, err := tx.Decode(bz)
	if err != nil {
		return nil, err
	}
	s := &txSummary{
		Hash:          tx.Hash(bz),
		Memo:          d.Body.Memo,
		TimeoutHeight: d.Body.TimeoutHeight,
		Fee:           d.AuthInfo.Fee,
		Signatures:    len(d.Signatures),
	}

	wb, err := tx.DecodeWasmBody(d.Body)
	var unsupported tx.ErrUnsupportedTypeURL
	switch {
	case errors.As(err, &unsupported):
		for _, a := range d.Body.Messages {
			s.Messages = append(s.Messages, txMessage{TypeURL: a.TypeURL})
		}
		return s, nil
	case err != nil:
		return nil, err
	}
	for _, m := range wb.Messages {
		msg := txMessage{
			TypeURL:  tx.TypeURLMsgExecuteContract,
			Sender:   m.Sender,
			Contract: m.Contract,
			Funds:    m.Funds,
		}
		if json.Valid(m.Msg) {
			msg.Msg = m.Msg
		}
		s.Messages = append(s.Messages, msg)
	}
	return s, nil
}

func newTxHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [base64 tx]",
		Short: "Print the hash and a summary of a raw transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := base64.StdEncoding.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid base64 tx: %w", err)
			}
			s, err := summarizeTx(bz)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
