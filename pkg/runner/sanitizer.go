package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"
)

var (
	// DefaultMaxFrameSize is 1MB, enough for any preset payload the UI produces.
	DefaultMaxFrameSize = 1 << 20
	// EnvMaxFrameSize is the environment variable to override the default.
	EnvMaxFrameSize = "HOSTBRIDGE_MAX_FRAME_SIZE"
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("frame contains invalid UTF-8 sequences")
)

// ValidateFrame checks a raw inbound frame before it is decoded.
// Oversized frames are rejected rather than truncated.
func ValidateFrame(frame []byte) error {
	limit := MaxFrameSize()
	if len(frame) > limit {
		return fmt.Errorf("%w: size=%d limit=%d", ErrFrameTooLarge, len(frame), limit)
	}
	if !utf8.Valid(frame) {
		return ErrInvalidUTF8
	}
	return nil
}

// MaxFrameSize returns the configured frame limit.
func MaxFrameSize() int {
	if val := os.Getenv(EnvMaxFrameSize); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxFrameSize
}
