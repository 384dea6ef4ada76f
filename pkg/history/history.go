package history

import (
	"sync"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/google/uuid"
)

// History is a ring buffer of ActionRecords.
// Safe for concurrent use.
type History struct {
	mu       sync.RWMutex
	buf      []domain.ActionRecord
	start    int // index of the oldest record
	size     int
	appended uint64
	now      func() time.Time
}

// Option configures a History.
type Option func(*History)

// WithClock overrides the time source used for records without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates a history holding at most capacity records.
// A non-positive capacity falls back to domain.DefaultHistoryCapacity.
func New(capacity int, opts ...Option) *History {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryCapacity
	}
	h := &History{
		buf: make([]domain.ActionRecord, capacity),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record appends an outcome, evicting the oldest record when full.
// Missing IDs and timestamps are filled in; the stored record is returned.
func (h *History) Record(rec domain.ActionRecord) domain.ActionRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = h.now()
	}

	capacity := len(h.buf)
	if h.size < capacity {
		h.buf[(h.start+h.size)%capacity] = rec
		h.size++
	} else {
		h.buf[h.start] = rec
		h.start = (h.start + 1) % capacity
	}
	h.appended++
	return rec
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Capacity returns the configured bound.
func (h *History) Capacity() int {
	return len(h.buf)
}

// Appended returns how many records were ever recorded, including evicted ones.
func (h *History) Appended() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.appended
}

// Records returns a copy of every retained record, oldest first.
func (h *History) Records() []domain.ActionRecord {
	return h.Last(-1)
}

// Last returns a copy of the n most recent records, oldest first.
// A negative n returns everything.
func (h *History) Last(n int) []domain.ActionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n < 0 || n > h.size {
		n = h.size
	}
	out := make([]domain.ActionRecord, n)
	capacity := len(h.buf)
	offset := h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.buf[(h.start+offset+i)%capacity]
	}
	return out
}

// Window returns a metrics snapshot over the n most recent records.
func (h *History) Window(n int) Window {
	return Window(h.Last(n))
}

// Clear drops every record. The appended counter is kept.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf = make([]domain.ActionRecord, len(h.buf))
	h.start = 0
	h.size = 0
}
