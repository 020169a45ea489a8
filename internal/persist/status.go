package persist

import "fmt"

// Mode is the persistence mode of a session.
type Mode int

const (
	// ModeLocal keeps the document in the local cache only.
	ModeLocal Mode = iota
	// ModeGuest is an anonymous session that never syncs.
	ModeGuest
	// ModeAuthenticated syncs the document to the remote store.
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeGuest:
		return "guest"
	case ModeAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name as written in configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "local", "":
		return ModeLocal, nil
	case "guest":
		return ModeGuest, nil
	case "authenticated":
		return ModeAuthenticated, nil
	}
	return ModeLocal, fmt.Errorf("unknown session mode %q", s)
}

// Status is the outcome of the latest persistence cycle.
type Status int

const (
	StatusLocalOnly Status = iota
	StatusSyncing
	StatusSynced
	StatusSyncError
	StatusGuestMode
)

var statusNames = [...]string{"local_only", "syncing", "synced", "sync_error", "guest_mode"}

func (s Status) String() string {
	if s < StatusLocalOnly || s > StatusGuestMode {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is the identity the gateway persists for.
type Session struct {
	Mode   Mode
	UserID string
	Email  string
}

// Authenticated reports whether the session carries a remote identity.
func (s Session) Authenticated() bool {
	return s.Mode == ModeAuthenticated && s.UserID != ""
}
