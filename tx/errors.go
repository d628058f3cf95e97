package tx

import (
	"errors"
	"fmt"
)

// CodeNotMsgExecute is the stable code reported for a message type outside
// the allow-list.
const CodeNotMsgExecute = 3

// ErrUnsupportedTypeURL is returned when a transaction carries a message
// that cannot be re-encoded for the bridge.
type ErrUnsupportedTypeURL struct {
	TypeURL string
}

func (e ErrUnsupportedTypeURL) Error() string {
	return fmt.Sprintf("unsupported message type %q (code %d)", e.TypeURL, CodeNotMsgExecute)
}

// Code returns CodeNotMsgExecute.
func (e ErrUnsupportedTypeURL) Code() int { return CodeNotMsgExecute }

var (
	// ErrTxNotIncluded is returned when an inclusion proof does not lead to
	// the data hash.
	ErrTxNotIncluded = errors.New("transaction is not included in the block data")
	// ErrEmptyTx is returned for a zero length transaction.
	ErrEmptyTx = errors.New("empty transaction")
)
