package domain

import "errors"

// Failure messages carried by Result envelopes. These strings are part of the
// wire contract with the UI core and must not change.
const (
	MsgStorageUnavailable = "Localstorage not available"
	MsgKeyNotFound        = "Key was not found"
	MsgCorruptedRecord    = "Stored value is corrupted"
	MsgStorageFailed      = "Storage operation failed"
)

// ErrKeyNotFound is returned by stores when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrStorageUnavailable is returned when no persistent store is usable.
var ErrStorageUnavailable = errors.New("storage not available")

// ErrUnknownChannel is returned when a channel name is not part of the protocol.
var ErrUnknownChannel = errors.New("unknown channel")

// ErrMalformedPayload is returned when a payload does not match its channel's shape.
var ErrMalformedPayload = errors.New("malformed payload")
