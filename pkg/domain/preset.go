package domain

import (
	"encoding/json"
	"fmt"
)

// Preset is a stored record as returned by a load.
type Preset struct {
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Boot is the startup snapshot handed to the UI core so the first render does
// not need a round-trip query.
type Boot struct {
	StorageAvailable bool     `json:"storageAvailable"`
	PresetKeys       []string `json:"presetKeys"`
}

// Response is a host -> UI message on an inbound channel.
type Response struct {
	Channel Channel
	Result  any
}

// Envelope serializes the response into its wire frame.
func (r Response) Envelope() (Envelope, error) {
	raw, err := json.Marshal(r.Result)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s result: %w", r.Channel, err)
	}
	return Envelope{Channel: r.Channel, Payload: raw}, nil
}

// MarshalJSON encodes the response as an envelope.
func (r Response) MarshalJSON() ([]byte, error) {
	env, err := r.Envelope()
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// BootResponse wraps a boot snapshot for transports that emit it as a frame.
func BootResponse(b Boot) Response {
	return Response{Channel: ChannelBoot, Result: b}
}
