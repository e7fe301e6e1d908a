package clients_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
)

func TestHeaderAnyRoundTrip(t *testing.T) {
	headers := []clients.Header{
		clients.MockHeader{HeaderHeight: ibc.NewHeight(0, 42), HeaderTimestamp: 100},
		clients.TendermintHeader{
			SignedHeaderHeight: ibc.NewHeight(1, 500),
			HeaderTimestamp:    200,
			ValidatorSetHash:   []byte{0xAA, 0xBB},
			NextValidatorsHash: []byte{0xCC},
		},
	}

	for _, h := range headers {
		a, err := h.ToAny()
		require.NoError(t, err)

		data, err := a.Marshal()
		require.NoError(t, err)

		decodedAny, err := clients.UnmarshalAny(data)
		require.NoError(t, err)

		decoded, err := clients.DecodeHeader(decodedAny)
		require.NoError(t, err)
		require.Equal(t, h, decoded)
	}
}

func TestClientStateAnyRoundTrip(t *testing.T) {
	cs := clients.TendermintClientState{
		ChainId:         "dst-1",
		LatestHeightVal: ibc.NewHeight(0, 10),
		TrustingPeriod:  1000,
		UnbondingPeriod: 2000,
	}

	a, err := cs.ToAny()
	require.NoError(t, err)

	decoded, err := clients.DecodeClientState(a)
	require.NoError(t, err)
	require.Equal(t, cs, decoded)
}

func TestUnknownHeaderType(t *testing.T) {
	_, err := clients.DecodeHeader(clients.Any{TypeUrl: "/x", Value: []byte("whatever")})
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown_header_type("/x")`)
}

func TestAnyHexRoundTrip(t *testing.T) {
	a := clients.Any{TypeUrl: clients.MockHeaderTypeURL, Value: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	s := a.Hex()
	require.Equal(t, clients.MockHeaderTypeURL+"|DEADBEEF", s)

	decoded, err := clients.AnyFromHex(s)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestAnyFromHexMalformed(t *testing.T) {
	_, err := clients.AnyFromHex("no-pipe-here")
	require.Error(t, err)

	_, err = clients.AnyFromHex(clients.MockHeaderTypeURL + "|not-hex")
	require.Error(t, err)
}
