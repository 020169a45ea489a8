// Package events defines the notifications the organizer emits and the
// broker that streams them to UI subscribers.
package events

import "sync"

// Event types.
const (
	TypeDocumentSaved    = "document.saved"
	TypeDocumentReloaded = "document.reloaded"
	TypeSyncStatus       = "sync.status"
	TypePersistenceError = "persistence.error"
	TypeImportCompleted  = "import.completed"
	TypeShareSent        = "share.sent"
	TypeShareAccepted    = "share.accepted"
	TypeShareDeclined    = "share.declined"
)

// Event is a typed notification with a JSON-serializable payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Publisher receives events. Publish must not block the caller for long.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// DocumentSaved reports a successful local cache write.
type DocumentSaved struct {
	Bytes int `json:"bytes"`
}

// DocumentReloaded reports that the in-memory document was replaced.
type DocumentReloaded struct {
	Source string `json:"source"` // "remote" or "cache"
}

// SyncStatus reports a persistence status transition.
type SyncStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PersistenceError reports a swallowed local cache failure.
type PersistenceError struct {
	Error string `json:"error"`
}

// ImportCompleted summarizes an import.
type ImportCompleted struct {
	Libraries  int `json:"libraries"`
	Skipped    int `json:"skipped"`
	Categories int `json:"categories"`
	Links      int `json:"links"`
}

// ShareEvent describes a share protocol transition.
type ShareEvent struct {
	ID         string `json:"id"`
	Recipient  string `json:"recipient,omitempty"`
	Categories int    `json:"categories,omitempty"`
	Links      int    `json:"links,omitempty"`
}

// Recorder is a Publisher that keeps every event, for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Last returns the most recent event of type typ.
func (r *Recorder) Last(typ string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return Event{}, false
}
