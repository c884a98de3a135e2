// Package progress carries job progress to whoever is watching: a hub
// fans events out per session, and a reporter throttles the high-frequency
// per-line ticks so a fast job does not flood its listener.
package progress

import (
	"sync"
	"time"
)

// Event types, in the order a job emits them.
const (
	TypeConnected    = "connected"
	TypeInit         = "init"
	TypeFileStart    = "file_start"
	TypeProgress     = "progress"
	TypeFileComplete = "file_complete"
	TypeComplete     = "complete"
	TypeError        = "error"
)

// Event is one progress notification. Fields are populated per type; the
// zero values of unused fields are omitted on the wire.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`

	// file_start and file_complete
	File      string `json:"file,omitempty"`
	FileIndex int    `json:"fileIndex,omitempty"`
	FileCount int    `json:"fileCount,omitempty"`

	// init
	TotalLines  int `json:"totalLines,omitempty"`
	UniqueLines int `json:"uniqueLines,omitempty"`
	BatchCount  int `json:"batchCount,omitempty"`

	// progress
	Done    int     `json:"done,omitempty"`
	Total   int     `json:"total,omitempty"`
	Percent float64 `json:"percent,omitempty"`

	// complete and error
	Message string   `json:"message,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
	Stats   any      `json:"stats,omitempty"`
}

// DefaultThrottle is the minimum gap between consecutive progress ticks.
const DefaultThrottle = 100 * time.Millisecond

// Hub routes events to per-session listeners. Events for a session nobody
// is listening to are dropped, so a job never blocks on a slow or absent
// watcher.
type Hub struct {
	mu       sync.Mutex
	channels map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]chan Event)}
}

// Attach registers a listener for session and returns its event channel
// plus a detach function. Attaching twice to the same session replaces the
// previous listener. The first event on the channel is a connected ack.
func (h *Hub) Attach(session string) (<-chan Event, func()) {
	ch := make(chan Event, 64)

	h.mu.Lock()
	if old, ok := h.channels[session]; ok {
		close(old)
	}
	h.channels[session] = ch
	h.mu.Unlock()

	ch <- Event{Type: TypeConnected, SessionID: session}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.channels[session] == ch {
			delete(h.channels, session)
			close(ch)
		}
	}
}

// Send delivers ev to the session's listener. Without a listener, or with
// a listener whose buffer is full, the event is dropped.
func (h *Hub) Send(session string, ev Event) {
	h.mu.Lock()
	ch, ok := h.channels[session]
	h.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// Reporter throttles progress ticks to at most one per throttle interval.
// Only TypeProgress events are throttled; everything else passes straight
// through. Final forces the closing 100% tick out regardless of timing.
type Reporter struct {
	send     func(Event)
	throttle time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewReporter(send func(Event)) *Reporter {
	return &Reporter{send: send, throttle: DefaultThrottle, now: time.Now}
}

// Emit sends a non-progress event immediately.
func (r *Reporter) Emit(ev Event) {
	r.send(ev)
}

// Progress sends a tick if the throttle window has passed, otherwise drops
// it. The next allowed tick carries the then-current counts, so no ground
// is lost by dropping intermediate ones.
func (r *Reporter) Progress(done, total int) {
	r.mu.Lock()
	now := r.now()
	if now.Sub(r.last) < r.throttle {
		r.mu.Unlock()
		return
	}
	r.last = now
	r.mu.Unlock()

	r.send(progressEvent(done, total))
}

// Final sends the closing tick unconditionally, so a listener always sees
// the job reach its last count even when the final lines land inside a
// throttle window.
func (r *Reporter) Final(done, total int) {
	r.mu.Lock()
	r.last = r.now()
	r.mu.Unlock()

	r.send(progressEvent(done, total))
}

func progressEvent(done, total int) Event {
	ev := Event{Type: TypeProgress, Done: done, Total: total}
	if total > 0 {
		ev.Percent = float64(done) / float64(total) * 100
	}
	return ev
}
