package moods

import (
	"context"
	"fmt"
	"time"

	"ourforever/internal/store"
)

// Store describes the persistence operations required by the mood service.
type Store interface {
	ListMoods(ctx context.Context, userID, date string) ([]store.Mood, error)
	SetMood(ctx context.Context, mood store.Mood) (store.Mood, error)
}

// Service records how each partner feels today.
type Service interface {
	List(ctx context.Context, userID, date string) ([]store.Mood, error)
	Set(ctx context.Context, userID, author, mood, message string) (store.Mood, error)
}

type service struct {
	store Store
	now   func() time.Time
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store, now: time.Now}
}

func (s *service) today() string {
	return s.now().Format(time.DateOnly)
}

// List returns moods recorded on date, which defaults to today.
func (s *service) List(ctx context.Context, userID, date string) ([]store.Mood, error) {
	if date == "" {
		date = s.today()
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
	}
	return s.store.ListMoods(ctx, userID, date)
}

func (s *service) Set(ctx context.Context, userID, author, mood, message string) (store.Mood, error) {
	return s.store.SetMood(ctx, store.Mood{
		Mood:    mood,
		Message: message,
		Author:  author,
		Date:    s.today(),
		UserID:  userID,
	})
}
