package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is an outbound message from the UI core. The set of implementations
// is closed: one type per outbound channel.
type Message interface {
	Channel() Channel
	isMessage()
}

// OpenDialog asks the host to present a surface modally.
type OpenDialog struct {
	DomID string
}

// CloseDialog asks the host to dismiss a modal surface.
type CloseDialog struct {
	DomID string
}

// DownloadSvg asks the host to export an element's markup as an SVG file.
type DownloadSvg struct {
	DomID    string `json:"domId"`
	FileName string `json:"fileName"`
}

// Log carries an arbitrary diagnostic payload.
type Log struct {
	Payload json.RawMessage
}

// SavePreset stores Payload under Key.
type SavePreset struct {
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// ListPresets enumerates stored keys.
type ListPresets struct{}

// LoadPreset reads the record stored under Key.
type LoadPreset struct {
	Key string
}

// DeletePreset removes the record stored under Key.
type DeletePreset struct {
	Key string
}

func (OpenDialog) Channel() Channel   { return ChannelOpenDialog }
func (CloseDialog) Channel() Channel  { return ChannelCloseDialog }
func (DownloadSvg) Channel() Channel  { return ChannelDownloadSvg }
func (Log) Channel() Channel          { return ChannelLog }
func (SavePreset) Channel() Channel   { return ChannelSavePreset }
func (ListPresets) Channel() Channel  { return ChannelListPresets }
func (LoadPreset) Channel() Channel   { return ChannelLoadPreset }
func (DeletePreset) Channel() Channel { return ChannelDeletePreset }

func (OpenDialog) isMessage()   {}
func (CloseDialog) isMessage()  {}
func (DownloadSvg) isMessage()  {}
func (Log) isMessage()          {}
func (SavePreset) isMessage()   {}
func (ListPresets) isMessage()  {}
func (LoadPreset) isMessage()   {}
func (DeletePreset) isMessage() {}

// Envelope is the wire frame shared by every transport, in both directions.
type Envelope struct {
	Channel Channel         `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode turns a wire envelope into a typed message.
func Decode(env Envelope) (Message, error) {
	switch env.Channel {
	case ChannelOpenDialog:
		id, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return OpenDialog{DomID: id}, nil
	case ChannelCloseDialog:
		id, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return CloseDialog{DomID: id}, nil
	case ChannelDownloadSvg:
		var m DownloadSvg
		if err := decodeObject(env, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ChannelLog:
		payload := env.Payload
		if len(payload) == 0 {
			payload = json.RawMessage("null")
		}
		return Log{Payload: payload}, nil
	case ChannelSavePreset:
		var m SavePreset
		if err := decodeObject(env, &m); err != nil {
			return nil, err
		}
		if len(m.Payload) == 0 {
			m.Payload = json.RawMessage("null")
		}
		return m, nil
	case ChannelListPresets:
		return ListPresets{}, nil
	case ChannelLoadPreset:
		key, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return LoadPreset{Key: key}, nil
	case ChannelDeletePreset:
		key, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return DeletePreset{Key: key}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, env.Channel)
}

// Encode builds the wire envelope for a message.
func Encode(msg Message) (Envelope, error) {
	var payload any
	switch m := msg.(type) {
	case OpenDialog:
		payload = m.DomID
	case CloseDialog:
		payload = m.DomID
	case DownloadSvg:
		payload = m
	case Log:
		return Envelope{Channel: m.Channel(), Payload: m.Payload}, nil
	case SavePreset:
		payload = m
	case ListPresets:
		return Envelope{Channel: m.Channel()}, nil
	case LoadPreset:
		payload = m.Key
	case DeletePreset:
		payload = m.Key
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownChannel, msg)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Channel: msg.Channel(), Payload: raw}, nil
}

func decodeString(env Envelope) (string, error) {
	var s string
	if err := json.Unmarshal(env.Payload, &s); err != nil {
		return "", fmt.Errorf("%w: %s expects a string: %v", ErrMalformedPayload, env.Channel, err)
	}
	return s, nil
}

func decodeObject(env Envelope, target any) error {
	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, env.Channel, err)
	}
	return nil
}
