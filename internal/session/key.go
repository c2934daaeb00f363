// Package session owns the map of active game sessions and the expiration
// timers racing against user actions. It is the sole arbiter of whether a
// key has a live session.
package session

// Key identifies the owner of a session: one user, or a canonical pair so
// either party of a two-player challenge maps to the same entry.
type Key string

func UserKey(kind, userID string) Key {
	return Key(kind + ":" + userID)
}

func PairKey(kind, a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key(kind + ":" + a + "+" + b)
}

// Session is the minimal view the registry needs of a running game.
type Session interface {
	Key() Key
	Kind() string
	Members() []string
}
