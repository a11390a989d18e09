// Package store keeps the couple album records in named JSON documents.
// Each collection is a single document that is loaded, modified and saved
// as a whole while holding the collection's lock.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ourforever/internal/docstore"
)

var (
	// ErrUnauthorized indicates an invalid, expired or missing session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps validation failures on create.
	ErrInvalidInput = errors.New("invalid input")
)

const defaultSessionTTL = 7 * 24 * time.Hour

// Store provides persistence on top of a docstore backend.
type Store struct {
	now        func() time.Time
	sessionTTL time.Duration

	users    *collection[usersDoc]
	sessions *collection[sessionsDoc]
	media    *collection[mediaDoc]
	timeline *collection[timelineDoc]
	notes    *collection[notesDoc]
	kisses   *collection[kissesDoc]
	moods    *collection[moodsDoc]
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionTTL sets how long a session stays valid. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.sessionTTL = ttl
	}
}

// New sets up a Store using the provided document backend.
func New(docs docstore.Store, opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		sessionTTL: defaultSessionTTL,
		users:      newCollection(docs, "users", func() usersDoc { return usersDoc{Users: []User{}} }),
		sessions:   newCollection(docs, "sessions", func() sessionsDoc { return sessionsDoc{Sessions: map[string]Session{}} }),
		media:      newCollection(docs, "media", func() mediaDoc { return mediaDoc{Media: []Media{}} }),
		timeline:   newCollection(docs, "timeline", func() timelineDoc { return timelineDoc{Events: []Event{}} }),
		notes:      newCollection(docs, "notes", func() notesDoc { return notesDoc{Notes: []Note{}} }),
		kisses:     newCollection(docs, "kisses", func() kissesDoc { return kissesDoc{Kisses: []Kiss{}} }),
		moods:      newCollection(docs, "moods", func() moodsDoc { return moodsDoc{Moods: []Mood{}} }),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() Timestamp {
	return Timestamp{Time: s.now().UTC()}
}

func newID() string {
	return uuid.NewString()
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// collection serialises access to one named document.
type collection[D any] struct {
	mu    sync.Mutex
	docs  docstore.Store
	name  string
	empty func() D
}

func newCollection[D any](docs docstore.Store, name string, empty func() D) *collection[D] {
	return &collection[D]{docs: docs, name: name, empty: empty}
}

func (c *collection[D]) load(ctx context.Context) (D, error) {
	doc := c.empty()
	if err := c.docs.Load(ctx, c.name, &doc); err != nil {
		return doc, fmt.Errorf("load %s: %w", c.name, err)
	}
	return doc, nil
}

// read loads a snapshot of the document.
func (c *collection[D]) read(ctx context.Context) (D, error) {
	if err := ctx.Err(); err != nil {
		var zero D
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// update runs fn against the current document and saves the result.
// Nothing is written when fn returns an error.
func (c *collection[D]) update(ctx context.Context, fn func(*D) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := c.docs.Save(ctx, c.name, doc); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}
