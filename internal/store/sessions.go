package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Session binds an opaque token to a user.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt Timestamp `json:"created_at"`
}

type sessionsDoc struct {
	Sessions map[string]Session `json:"sessions"`
}

// CreateSession issues a new token for userID. Expired sessions are dropped
// on the way.
func (s *Store) CreateSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", invalid("user id is required")
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}

	err = s.sessions.update(ctx, func(doc *sessionsDoc) error {
		if doc.Sessions == nil {
			doc.Sessions = map[string]Session{}
		}
		for key, sess := range doc.Sessions {
			if s.expired(sess) {
				delete(doc.Sessions, key)
			}
		}
		doc.Sessions[token] = Session{UserID: userID, CreatedAt: s.timestamp()}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession returns the user behind token.
func (s *Store) ResolveSession(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthorized
	}
	doc, err := s.sessions.read(ctx)
	if err != nil {
		return User{}, err
	}
	sess, ok := doc.Sessions[token]
	if !ok || s.expired(sess) {
		return User{}, ErrUnauthorized
	}

	user, err := s.UserByID(ctx, sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrUnauthorized
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// DeleteSession removes token. Unknown tokens are ignored.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.update(ctx, func(doc *sessionsDoc) error {
		delete(doc.Sessions, token)
		return nil
	})
}

func (s *Store) expired(sess Session) bool {
	if s.sessionTTL <= 0 || sess.CreatedAt.IsZero() {
		return false
	}
	return s.now().Sub(sess.CreatedAt.Time) > s.sessionTTL
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
