package clients

import (
	"encoding/json"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// ConsensusState is the capability every light-client consensus state
// implements, regardless of kind.
type ConsensusState interface {
	ClientType() ClientType
	Timestamp() ibc.Timestamp
	ToAny() (Any, error)
}

// TendermintConsensusState snapshots the validator commitment at a height.
type TendermintConsensusState struct {
	TimestampVal ibc.Timestamp
	RootHash     []byte
	NextValsHash []byte
}

// ClientType implements ConsensusState.
func (c TendermintConsensusState) ClientType() ClientType { return ClientTypeTendermint }

// Timestamp implements ConsensusState.
func (c TendermintConsensusState) Timestamp() ibc.Timestamp { return c.TimestampVal }

// ToAny implements ConsensusState.
func (c TendermintConsensusState) ToAny() (Any, error) {
	value, err := json.Marshal(c)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode tendermint consensus state: %v", err)
	}
	return Any{TypeUrl: TendermintConsensusTypeURL, Value: value}, nil
}

// MockConsensusState is the test-only counterpart of
// TendermintConsensusState.
type MockConsensusState struct {
	TimestampVal ibc.Timestamp
}

// ClientType implements ConsensusState.
func (c MockConsensusState) ClientType() ClientType { return ClientTypeMock }

// Timestamp implements ConsensusState.
func (c MockConsensusState) Timestamp() ibc.Timestamp { return c.TimestampVal }

// ToAny implements ConsensusState.
func (c MockConsensusState) ToAny() (Any, error) {
	value, err := json.Marshal(c)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode mock consensus state: %v", err)
	}
	return Any{TypeUrl: MockConsensusTypeURL, Value: value}, nil
}

// DecodeConsensusState dispatches on type_url to the matching variant.
func DecodeConsensusState(a Any) (ConsensusState, error) {
	switch a.TypeUrl {
	case TendermintConsensusTypeURL:
		var c TendermintConsensusState
		if err := json.Unmarshal(a.Value, &c); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode tendermint consensus state: %v", err)
		}
		return c, nil
	case MockConsensusTypeURL:
		var c MockConsensusState
		if err := json.Unmarshal(a.Value, &c); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode mock consensus state: %v", err)
		}
		return c, nil
	default:
		return nil, UnknownTypeURLError("consensus_state", a.TypeUrl)
	}
}

// ConsensusStateAtHeight pairs a consensus state with the height it was
// recorded at (spec.md §3: IbcData.consensus_states is an ordered list of
// these per client).
type ConsensusStateAtHeight struct {
	Height ibc.Height
	State  ConsensusState
}
