// Package model contains domain models passed between layers.
package model

import "time"

// Reserved keys injected into confirmed-event renderings. Everything else
// in the payload is opaque to the engine and echoed verbatim.
const (
	KeyClientEventID = "client_event_id"
	KeyServerID      = "server_id"
	KeySequence      = "sequence"
	KeySynced        = "synced"
	KeyDeleted       = "deleted"
)

// ScoreEvent is one recorded play within a game's event stream.
type ScoreEvent struct {
	ClientID  string         // id generated by the submitting device, stable across retries
	ServerID  string         // id assigned once on first acceptance
	Sequence  int64          // position within the game, unique among live events
	Payload   map[string]any // opaque scoring fields, stored and echoed verbatim
	UserName  string
	DeviceID  string
	Timestamp time.Time
}

// Confirmed renders the event in response shape: all payload fields plus
// identity keys and the synchronized marker.
func (e ScoreEvent) Confirmed() map[string]any {
	out := make(map[string]any, len(e.Payload)+4)
	for k, v := range e.Payload {
		out[k] = v
	}
	out[KeyClientEventID] = e.ClientID
	out[KeyServerID] = e.ServerID
	out[KeySequence] = e.Sequence
	out[KeySynced] = true
	return out
}

// Tombstone renders the event's last known shape with the deleted marker.
// It is broadcast exactly once, at delete time.
func (e ScoreEvent) Tombstone() map[string]any {
	out := e.Confirmed()
	out[KeyDeleted] = true
	return out
}
