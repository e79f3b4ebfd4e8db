package session

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/middleware/session"
)

// stateKey is the single session key the typed state is serialized under.
const stateKey = "chat_state"

// Load decodes the typed state from the transport session. A fresh session
// yields a zero State.
func Load(sess *session.Session) (*State, error) {
	st := &State{}
	raw := sess.Get(stateKey)
	if raw == nil {
		return st, nil
	}
	b, ok := raw.([]byte)
	if !ok {
		if s, ok := raw.(string); ok {
			b = []byte(s)
		} else {
			return st, nil
		}
	}
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return st, nil
}

// Save encodes the typed state back into the transport session and persists
// it.
func Save(sess *session.Session, st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	sess.Set(stateKey, b)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
