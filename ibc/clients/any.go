// Package clients implements the polymorphic light-client header and state
// abstraction (spec.md §4.5): a length-prefixed protobuf Any envelope
// {type_url, value} that discriminates between client kinds, plus tagged
// AnyHeader/AnyClientState/AnyConsensusState variants for the two supported
// kinds - a production Tendermint-style BFT light client and a Mock client
// used only in tests.
package clients

import (
	"encoding/hex"
	"strings"

	sdkerrors "cosmossdk.io/errors"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

// Any is the wire envelope every header, client state, and consensus state
// travels in: a type_url discriminant plus an opaque payload. It mirrors
// cosmos-sdk's codec/types.Any, the Any representation used throughout the
// IBC wire protocol, so Marshal/Unmarshal are genuine protobuf encodings.
type Any struct {
	TypeUrl string
	Value   []byte
}

// Marshal encodes the envelope as protobuf bytes.
func (a Any) Marshal() ([]byte, error) {
	data, err := (&cdctypes.Any{TypeUrl: a.TypeUrl, Value: a.Value}).Marshal()
	if err != nil {
		return nil, sdkerrors.Wrapf(ibc.ErrEncoding, "marshal any %s: %v", a.TypeUrl, err)
	}
	return data, nil
}

// UnmarshalAny decodes protobuf bytes produced by Marshal back into an Any
// envelope.
func UnmarshalAny(data []byte) (Any, error) {
	var pb cdctypes.Any
	if err := pb.Unmarshal(data); err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "unmarshal any: %v", err)
	}
	return Any{TypeUrl: pb.TypeUrl, Value: pb.Value}, nil
}

// Hex renders the envelope as an uppercase-hex string for diagnostic I/O
// (spec.md §6). The encoding is "type_url|HEXVALUE".
func (a Any) Hex() string {
	return a.TypeUrl + "|" + strings.ToUpper(hex.EncodeToString(a.Value))
}

// AnyFromHex is the inverse of Hex. Malformed hex is an error, never a
// panic (spec.md §9 Open Question (b)).
func AnyFromHex(s string) (Any, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "malformed diagnostic envelope %q", s)
	}

	value, err := hex.DecodeString(strings.ToLower(parts[1]))
	if err != nil {
		return Any{}, sdkerrors.Wrapf(ibc.ErrEncoding, "malformed hex in envelope %q: %v", s, err)
	}

	return Any{TypeUrl: parts[0], Value: value}, nil
}

// UnknownTypeURLError reports a type_url none of the registered variants
// recognise.
func UnknownTypeURLError(kind, typeURL string) error {
	return sdkerrors.Wrapf(ibc.ErrEncoding, "unknown_%s_type(%q)", kind, typeURL)
}
