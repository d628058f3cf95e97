package version

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = TBCoreSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// TBCoreSemVer is the current version of the bridge core.
	// It's the Semantic Version of the software.
	TBCoreSemVer = "0.3.0"
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

// BlockProtocol is the block protocol of the Tendermint v0.34 chains this
// client follows.
var BlockProtocol Protocol = 11

// Consensus captures the consensus rules for processing a block in the blockchain,
// including all blockchain data structures and the rules of the application's
// state transition machine.
type Consensus struct {
	Block Protocol `json:"block,string"`
	App   Protocol `json:"app,string"`
}

var _ protoio.Appender = Consensus{}

func (c Consensus) Size() int {
	return protoio.SizeVarintField(1, c.Block.Uint64()) +
		protoio.SizeVarintField(2, c.App.Uint64())
}

// AppendProto appends the tendermint.version.Consensus encoding of c.
func (c Consensus) AppendProto(b []byte) []byte {
	b = protoio.AppendVarintField(b, 1, c.Block.Uint64())
	return protoio.AppendVarintField(b, 2, c.App.Uint64())
}

// Marshal returns the protobuf encoding of c. A zero App is omitted.
func (c Consensus) Marshal() ([]byte, error) {
	return protoio.Marshal(c), nil
}

// Unmarshal decodes the protobuf encoding of a Consensus into c.
func (c *Consensus) Unmarshal(bz []byte) error {
	*c = Consensus{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("version.block", protowire.VarintType); err != nil {
				return err
			}
			c.Block = Protocol(f.Uint)
		case 2:
			if err := f.Expect("version.app", protowire.VarintType); err != nil {
				return err
			}
			c.App = Protocol(f.Uint)
		}
		return nil
	})
}
