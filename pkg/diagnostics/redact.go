package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/hostbridge/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// RedactingSink masks object fields whose names match any pattern before
// handing the payload to Next. Non-object payloads pass through unchanged.
type RedactingSink struct {
	Next     ports.DiagnosticSink
	patterns []*regexp.Regexp
}

// NewRedactingSink compiles patterns and wraps next.
func NewRedactingSink(next ports.DiagnosticSink, patterns []string) (*RedactingSink, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return &RedactingSink{Next: next, patterns: compiled}, nil
}

// Log implements ports.DiagnosticSink.
func (s *RedactingSink) Log(ctx context.Context, payload json.RawMessage) error {
	if len(s.patterns) == 0 {
		return s.Next.Log(ctx, payload)
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return s.Next.Log(ctx, payload)
	}
	if !s.mask(v) {
		return s.Next.Log(ctx, payload)
	}

	masked, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to re-encode redacted payload: %w", err)
	}
	return s.Next.Log(ctx, masked)
}

// mask walks v in place and reports whether anything was replaced.
func (s *RedactingSink) mask(v any) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if s.matches(k) {
				t[k] = Mask
				changed = true
				continue
			}
			if s.mask(val) {
				changed = true
			}
		}
	case []any:
		for _, item := range t {
			if s.mask(item) {
				changed = true
			}
		}
	}
	return changed
}

func (s *RedactingSink) matches(key string) bool {
	for _, p := range s.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
