package session

import "strings"

// Mode is the authentication mode of a store connection
type Mode string

const (
	// ModeKeyPair authenticates with a consumer key/secret pair sent as
	// query parameters on every request
	ModeKeyPair Mode = "keypair"
	// ModeBearer authenticates with a short-lived access token obtained
	// via a username/password exchange
	ModeBearer Mode = "bearer"
)

// Session is the active connection to one store. It is either fully
// populated for its declared mode or absent; there are no partial or
// mixed-mode sessions. Callers treat a Session as immutable - the only
// way to change it is a wholesale Replace on the Store.
//
// Bearer-mode access and refresh tokens are deliberately excluded from
// the serialized form: they are short-lived and kept in process memory
// only, while key-pair secrets are persisted with the record.
type Session struct {
	StoreURL       string `json:"storeUrl"`
	Mode           Mode   `json:"mode"`
	ConsumerKey    string `json:"consumerKey,omitempty"`
	ConsumerSecret string `json:"consumerSecret,omitempty"`
	Username       string `json:"username,omitempty"`
}

// NormalizeStoreURL strips the trailing slash so path concatenation is
// uniform across the codebase.
func NormalizeStoreURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

// Valid reports whether the session is fully populated for its mode.
func (s *Session) Valid() bool {
	if s == nil || s.StoreURL == "" {
		return false
	}
	switch s.Mode {
	case ModeKeyPair:
		return s.ConsumerKey != "" && s.ConsumerSecret != ""
	case ModeBearer:
		return s.Username != ""
	}
	return false
}
