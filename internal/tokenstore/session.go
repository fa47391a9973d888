package tokenstore

import (
	"context"

	"github.com/kola-hr/kola/internal/shared"
)

// SessionBackend stores values in the browser's cookie session. The session
// is persisted to Redis when the response is committed.
type SessionBackend struct {
	sess *shared.Session
}

// NewSessionBackend wraps sess. A nil session behaves as empty storage that
// rejects writes.
func NewSessionBackend(sess *shared.Session) *SessionBackend {
	return &SessionBackend{sess: sess}
}

func (b *SessionBackend) Load(_ context.Context, key string) (string, error) {
	if b.sess == nil {
		return "", shared.ErrSessionMissing
	}
	value, ok := b.sess.Lookup(key)
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *SessionBackend) Save(_ context.Context, key, value string) error {
	if b.sess == nil {
		return shared.ErrSessionMissing
	}
	b.sess.Set(key, value)
	return nil
}

func (b *SessionBackend) Delete(_ context.Context, keys ...string) error {
	if b.sess == nil {
		return shared.ErrSessionMissing
	}
	b.sess.Delete(keys...)
	return nil
}
