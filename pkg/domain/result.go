package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is the uniform response envelope for request/response channels.
// It carries either a value or a human-readable error, never both.
//
// On the wire it is {"data": <value>} or {"error": "<message>"}.
type Result[T any] struct {
	value T
	err   string
	ok    bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail wraps a failure message.
func Fail[T any](msg string) Result[T] {
	return Result[T]{err: msg}
}

// IsOk reports whether the result carries a value.
func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the carried value and whether the result is a success.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Error returns the failure message, or "" on success.
func (r Result[T]) Error() string {
	if r.ok {
		return ""
	}
	return r.err
}

// MarshalJSON encodes exactly one of data/error.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.err})
	}
	data, err := json.Marshal(r.value)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"data":`)
	buf.Write(data)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an envelope produced by MarshalJSON.
func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, hasData := raw["data"]
	errMsg, hasErr := raw["error"]
	if hasData == hasErr {
		return fmt.Errorf("%w: result must carry exactly one of data or error", ErrMalformedPayload)
	}
	if hasErr {
		var msg string
		if err := json.Unmarshal(errMsg, &msg); err != nil {
			return fmt.Errorf("%w: error must be a string", ErrMalformedPayload)
		}
		*r = Fail[T](msg)
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ok(v)
	return nil
}
