package model

import "time"

// MutationType identifies the operation carried by a mutation envelope.
type MutationType string

// Supported mutation types.
const (
	MutationCreate MutationType = "create"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// Audit records the provenance of a mutation.
type Audit struct {
	UserName  string
	DeviceID  string
	Timestamp time.Time
}

// Mutation is one requested change to a game's event stream.
type Mutation struct {
	Type          MutationType
	ClientEventID string
	ServerEventID string // set on update/delete when the client knows it
	Sequence      int64
	Event         map[string]any // opaque payload; required for create/update
	Audit         Audit
}

// ClientID resolves the effective client event id: the payload's own id
// wins, falling back to the envelope's id.
func (m Mutation) ClientID() string {
	if m.Event != nil {
		if id, ok := m.Event[KeyClientEventID].(string); ok && id != "" {
			return id
		}
	}
	return m.ClientEventID
}

// Result is the synchronous outcome of a successfully ingested mutation.
// Event is the confirmed rendering of the stored event, nil after a delete.
type Result struct {
	ServerEventID string
	Sequence      int64
	Event         map[string]any
}
