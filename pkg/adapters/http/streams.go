package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/hostbridge/internal/logging"
)

// streamBuffer is the number of frames queued per subscriber before drops.
const streamBuffer = 16

// StreamManager fans inbound envelopes out to the SSE connections of a session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{} // session -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for session. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(session string) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, streamBuffer)
	if _, ok := sm.subscribers[session]; !ok {
		sm.subscribers[session] = make(map[chan []byte]struct{})
	}
	sm.subscribers[session][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[session]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, session)
				}
			}
		})
	}
}

// Broadcast delivers frame to every listener of session and returns how many
// received it. Slow listeners with a full buffer miss the frame.
func (sm *StreamManager) Broadcast(session string, frame []byte) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	delivered := 0
	for ch := range sm.subscribers[session] {
		select {
		case ch <- frame:
			delivered++
		default:
			sm.logger.Warn("SSE: client buffer full, dropping frame", "session", session)
		}
	}
	return delivered
}

// Subscribers returns the number of listeners for session.
func (sm *StreamManager) Subscribers(session string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[session])
}
