package snapshot

import (
	"encoding/json"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/ibc/clients"
	"github.com/tokenize-x/ibc-relayer/pkg/deterministicmap"
)

// wireIbcData is IbcData's JSON shape: plain maps, sorted by
// encoding/json on marshal, which is what spec.md §4.2/§6 requires ("keys
// of type PortChannelId in JSON maps are rendered as channel:port;
// PacketId keys as port/channel/sequence. Round-trip must be exact.").
type wireIbcData struct {
	AppStatus          chain.ChainStatus               `json:"app_status"`
	Connections        map[string]ConnectionEnd        `json:"connections"`
	Channels           map[string]ChannelEnd           `json:"channels"`
	ClientStates       map[string]clients.Any          `json:"client_states"`
	ConsensusStates    map[string][]ConsensusStateEntry `json:"consensus_states"`
	PendingSentPackets map[string]ibc.Packet           `json:"pending_sent_packets"`
}

// MarshalJSON implements json.Marshaler.
func (d IbcData) MarshalJSON() ([]byte, error) {
	w := wireIbcData{
		AppStatus:          d.AppStatus,
		Connections:        toPlain(d.Connections),
		Channels:           toPlain(d.Channels),
		ClientStates:       toPlain(d.ClientStates),
		ConsensusStates:    toPlain(d.ConsensusStates),
		PendingSentPackets: toPlain(d.PendingSentPackets),
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *IbcData) UnmarshalJSON(data []byte) error {
	var w wireIbcData
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	d.AppStatus = w.AppStatus
	d.Connections = deterministicmap.FromMap(w.Connections)
	d.Channels = deterministicmap.FromMap(w.Channels)
	d.ClientStates = deterministicmap.FromMap(w.ClientStates)
	d.ConsensusStates = deterministicmap.FromMap(w.ConsensusStates)
	d.PendingSentPackets = deterministicmap.FromMap(w.PendingSentPackets)
	return nil
}

func toPlain[V any](m *deterministicmap.Map[string, V]) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	out := make(map[string]V, m.Len())
	_ = m.Range(func(key string, value V) error {
		out[key] = value
		return nil
	})
	return out
}
