package clients

import (
	"encoding/json"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// ClientState is the capability every light-client state implements,
// regardless of kind.
type ClientState interface {
	ClientType() ClientType
	LatestHeight() ibc.Height
	ToAny() (Any, error)
}

// TendermintClientState is the initial state a CreateClient message installs
// for a production light client.
type TendermintClientState struct {
	ChainId         ibc.ChainId
	LatestHeightVal ibc.Height
	TrustingPeriod  int64 // nanoseconds
	UnbondingPeriod int64 // nanoseconds
}

// ClientType implements ClientState.
func (c TendermintClientState) ClientType() ClientType { return ClientTypeTendermint }

// LatestHeight implements ClientState.
func (c TendermintClientState) LatestHeight() ibc.Height { return c.LatestHeightVal }

// ToAny implements ClientState.
func (c TendermintClientState) ToAny() (Any, error) {
	value, err := json.Marshal(c)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode tendermint client state: %v", err)
	}
	return Any{TypeUrl: TendermintClientTypeURL, Value: value}, nil
}

// MockClientState is the test-only counterpart of TendermintClientState.
type MockClientState struct {
	ChainId         ibc.ChainId
	LatestHeightVal ibc.Height
}

// ClientType implements ClientState.
func (c MockClientState) ClientType() ClientType { return ClientTypeMock }

// LatestHeight implements ClientState.
func (c MockClientState) LatestHeight() ibc.Height { return c.LatestHeightVal }

// ToAny implements ClientState.
func (c MockClientState) ToAny() (Any, error) {
	value, err := json.Marshal(c)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode mock client state: %v", err)
	}
	return Any{TypeUrl: MockClientTypeURL, Value: value}, nil
}

// DecodeClientState dispatches on type_url to the matching variant.
func DecodeClientState(a Any) (ClientState, error) {
	switch a.TypeUrl {
	case TendermintClientTypeURL:
		var c TendermintClientState
		if err := json.Unmarshal(a.Value, &c); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode tendermint client state: %v", err)
		}
		return c, nil
	case MockClientTypeURL:
		var c MockClientState
		if err := json.Unmarshal(a.Value, &c); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode mock client state: %v", err)
		}
		return c, nil
	default:
		return nil, UnknownTypeURLError("client_state", a.TypeUrl)
	}
}
