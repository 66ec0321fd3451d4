package channel

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire format for every channel message, inbound and
// outbound. Type discriminates the named event; Data carries the payload.
type Envelope struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	TS   int64           `json:"ts,omitempty"` // unix milliseconds
}

// NewEnvelope creates an outbound envelope with a fresh message ID.
func NewEnvelope(event string, payload any) (Envelope, error) {
	env := Envelope{
		ID:   uuid.New().String(),
		Type: event,
		TS:   time.Now().UnixMilli(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		env.Data = raw
	}
	return env, nil
}

// Decode unmarshals the envelope payload into target. An empty payload
// leaves target untouched.
func (e Envelope) Decode(target any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, target)
}

// Time returns the envelope timestamp, or the zero time when unset.
func (e Envelope) Time() time.Time {
	if e.TS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.TS)
}
