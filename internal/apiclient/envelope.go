package apiclient

import (
	"encoding/json"
	"fmt"
)

// Envelope is the response shape every CMS endpoint returns.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the envelope payload into out, which must be a non-nil
// pointer.
func (e *Envelope) Decode(out any) error {
	if e == nil {
		return fmt.Errorf("nil envelope")
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}

// NewEnvelope wraps a payload in a successful envelope. Used by the fallback
// supplier and the dev stub.
func NewEnvelope(payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode envelope data: %w", err)
	}
	return &Envelope{Success: true, Data: raw}, nil
}
