package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/pkg/metrics"
)

const defaultBuffer = 64

// Hub fans progress updates out to the streams subscribed to a session key.
// Emit never blocks: a subscriber whose buffer is full misses the update.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	buffer      int
	logger      *zap.Logger
}

type subscriber struct {
	ch     chan domain.Progress
	closed bool
}

// NewHub creates a new progress hub
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		buffer:      buffer,
		logger:      logger.Named("progress"),
	}
}

// Emit delivers progress to every subscriber of sessionKey
func (h *Hub) Emit(sessionKey string, progress domain.Progress) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.subscribers[sessionKey]
	if len(subs) == 0 {
		h.logger.Debug("progress without subscribers",
			zap.String("sid", sessionKey),
			zap.Int("completed", progress.Completed),
			zap.Int("total", progress.Total))
		return
	}

	for sub := range subs {
		select {
		case sub.ch <- progress:
		default:
			h.logger.Warn("progress subscriber lagging, update dropped", zap.String("sid", sessionKey))
		}
	}
}

// Subscribe registers a stream for sessionKey. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(sessionKey string) (<-chan domain.Progress, func()) {
	sub := &subscriber{ch: make(chan domain.Progress, h.buffer)}

	h.mu.Lock()
	if h.subscribers[sessionKey] == nil {
		h.subscribers[sessionKey] = make(map[*subscriber]struct{})
	}
	h.subscribers[sessionKey][sub] = struct{}{}
	h.mu.Unlock()

	metrics.ProgressSubscribers.Inc()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if sub.closed {
			return
		}
		sub.closed = true
		delete(h.subscribers[sessionKey], sub)
		if len(h.subscribers[sessionKey]) == 0 {
			delete(h.subscribers, sessionKey)
		}
		close(sub.ch)
		metrics.ProgressSubscribers.Dec()
	}

	return sub.ch, unsubscribe
}

// Subscribers returns the number of open streams for sessionKey
func (h *Hub) Subscribers(sessionKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionKey])
}
