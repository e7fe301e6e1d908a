package ibc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc"
)

func TestHeightOrdering(t *testing.T) {
	h1 := ibc.NewHeight(0, 10)
	h2 := ibc.NewHeight(0, 20)
	h3 := ibc.NewHeight(1, 1)

	require.True(t, h1.LT(h2))
	require.True(t, h2.LT(h3))
	require.True(t, h3.GT(h1))
	require.True(t, h1.LTE(h1))
	require.False(t, h1.LT(h1))
}

func TestPacketTimedOutAt(t *testing.T) {
	h := ibc.NewHeight(0, 1000)
	p := ibc.Packet{
		TimeoutHeight:    &h,
		TimeoutTimestamp: 1000,
	}

	require.False(t, p.TimedOutAt(ibc.NewHeight(0, 999), 999))
	require.True(t, p.TimedOutAt(ibc.NewHeight(0, 1000), 999))
	require.True(t, p.TimedOutAt(ibc.NewHeight(0, 999), 1000))
}
