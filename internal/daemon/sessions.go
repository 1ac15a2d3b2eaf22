package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// SessionStatus represents where a popover session is in its life.
type SessionStatus int

const (
	// SessionStatusActive means the popover is on screen.
	SessionStatusActive SessionStatus = iota
	// SessionStatusDismissed means the popover is gone.
	SessionStatusDismissed
)

// String returns the string representation of SessionStatus.
func (s SessionStatus) String() string {
	switch s {
	case SessionStatusActive:
		return "active"
	case SessionStatusDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// SessionRecord is what the daemon remembers about one popover.
type SessionRecord struct {
	ID          string
	Text        string
	Status      SessionStatus
	Placement   placement.Result
	ShownAt     time.Time
	DismissedAt time.Time // zero while active
	Reason      popover.DismissReason
}

// SessionRegistry maps session IDs to records. Dismissed records are kept
// up to a limit so late status queries still get an answer.
type SessionRegistry struct {
	mu sync.RWMutex

	byID     map[string]*SessionRecord
	order    []string // registration order, oldest first
	activeID string
	limit    int
}

// NewSessionRegistry creates a registry keeping at most limit dismissed records.
func NewSessionRegistry(limit int) *SessionRegistry {
	if limit < 1 {
		limit = 1
	}
	return &SessionRegistry{
		byID:  make(map[string]*SessionRecord),
		limit: limit,
	}
}

// Register records a newly shown session and makes it the active one.
func (r *SessionRegistry) Register(s *popover.Session) SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &SessionRecord{
		ID:        s.ID(),
		Text:      describe(s.Content()),
		Status:    SessionStatusActive,
		Placement: s.Placement(),
		ShownAt:   s.ShownAt(),
	}

	if _, exists := r.byID[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}
	r.byID[rec.ID] = rec
	r.activeID = rec.ID
	r.prune()
	return *rec
}

// Complete marks a session dismissed. It reports false for unknown or
// already dismissed sessions.
func (r *SessionRegistry) Complete(id string, reason popover.DismissReason) (SessionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok || rec.Status == SessionStatusDismissed {
		return SessionRecord{}, false
	}

	rec.Status = SessionStatusDismissed
	rec.DismissedAt = time.Now()
	rec.Reason = reason
	if r.activeID == id {
		r.activeID = ""
	}
	r.prune()
	return *rec, true
}

// Get returns the record for id.
func (r *SessionRegistry) Get(id string) (SessionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return SessionRecord{}, false
	}
	return *rec, true
}

// Active returns the record of the popover on screen.
func (r *SessionRegistry) Active() (SessionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return SessionRecord{}, false
	}
	return *r.byID[r.activeID], true
}

// Recent returns all records, newest first.
func (r *SessionRegistry) Recent() []SessionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SessionRecord, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, *r.byID[r.order[i]])
	}
	return out
}

// Count returns the number of tracked sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// prune drops the oldest dismissed records beyond the limit. Called with mu held.
func (r *SessionRegistry) prune() {
	dismissed := 0
	for _, id := range r.order {
		if r.byID[id].Status == SessionStatusDismissed {
			dismissed++
		}
	}

	kept := r.order[:0]
	for _, id := range r.order {
		if dismissed > r.limit && r.byID[id].Status == SessionStatusDismissed {
			delete(r.byID, id)
			dismissed--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

func describe(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprintf("%T", content)
	}
}
