package clients

import (
	"encoding/json"

	sdkerrors "cosmossdk.io/errors"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// ClientType names the light-client kind a Header/ClientState/ConsensusState
// variant belongs to.
type ClientType string

const (
	// ClientTypeTendermint is the production BFT light client kind.
	ClientTypeTendermint ClientType = "tendermint"
	// ClientTypeMock is a deterministic, signature-free client kind used
	// only in tests.
	ClientTypeMock ClientType = "mock"
)

// Known type_urls for the Any envelope (spec.md §6).
const (
	TendermintHeaderTypeURL  = "/ibc.lightclients.tendermint.v1.Header"
	MockHeaderTypeURL        = "/ibc.mock.Header"
	TendermintClientTypeURL  = "/ibc.lightclients.tendermint.v1.ClientState"
	MockClientTypeURL        = "/ibc.mock.ClientState"
	TendermintConsensusTypeURL = "/ibc.lightclients.tendermint.v1.ConsensusState"
	MockConsensusTypeURL       = "/ibc.mock.ConsensusState"
)

// Header is the capability every light-client header implements, regardless
// of client kind (spec.md §4.5).
type Header interface {
	ClientType() ClientType
	Height() ibc.Height
	Timestamp() ibc.Timestamp
	ToAny() (Any, error)
}

// TendermintHeader is the production light-client header payload: enough of
// a CometBFT signed header + validator set to verify a state transition.
// Full byzantine-fault-tolerant verification is delegated to the pluggable
// light-client component (spec.md §1); the relayer core only needs to move
// this payload between chains untouched.
type TendermintHeader struct {
	SignedHeaderHeight ibc.Height
	HeaderTimestamp    ibc.Timestamp
	ValidatorSetHash   []byte
	NextValidatorsHash []byte
}

// ClientType implements Header.
func (h TendermintHeader) ClientType() ClientType { return ClientTypeTendermint }

// Height implements Header.
func (h TendermintHeader) Height() ibc.Height { return h.SignedHeaderHeight }

// Timestamp implements Header.
func (h TendermintHeader) Timestamp() ibc.Timestamp { return h.HeaderTimestamp }

// ToAny implements Header.
func (h TendermintHeader) ToAny() (Any, error) {
	value, err := json.Marshal(h)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode tendermint header: %v", err)
	}
	return Any{TypeUrl: TendermintHeaderTypeURL, Value: value}, nil
}

// MockHeader is a deterministic test-only header: it carries just the
// height and timestamp a mock light client needs to "verify" a transition.
type MockHeader struct {
	HeaderHeight    ibc.Height
	HeaderTimestamp ibc.Timestamp
}

// ClientType implements Header.
func (h MockHeader) ClientType() ClientType { return ClientTypeMock }

// Height implements Header.
func (h MockHeader) Height() ibc.Height { return h.HeaderHeight }

// Timestamp implements Header.
func (h MockHeader) Timestamp() ibc.Timestamp { return h.HeaderTimestamp }

// ToAny implements Header.
func (h MockHeader) ToAny() (Any, error) {
	value, err := json.Marshal(h)
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "encode mock header: %v", err)
	}
	return Any{TypeUrl: MockHeaderTypeURL, Value: value}, nil
}

// DecodeHeader dispatches on the envelope's type_url to the matching
// variant. An unrecognised type_url yields UnknownTypeURLError rather than
// panicking.
func DecodeHeader(a Any) (Header, error) {
	switch a.TypeUrl {
	case TendermintHeaderTypeURL:
		var h TendermintHeader
		if err := json.Unmarshal(a.Value, &h); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode tendermint header: %v", err)
		}
		return h, nil
	case MockHeaderTypeURL:
		var h MockHeader
		if err := json.Unmarshal(a.Value, &h); err != nil {
			return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "decode mock header: %v", err)
		}
		return h, nil
	default:
		return nil, UnknownTypeURLError("header", a.TypeUrl)
	}
}
