package kisses

import (
	"context"

	"ourforever/internal/store"
)

// Store describes the persistence operations required by the kisses service.
type Store interface {
	ListKisses(ctx context.Context, userID string) ([]store.Kiss, error)
	CreateKiss(ctx context.Context, kiss store.Kiss) (store.Kiss, error)
}

// Publisher fans new kisses out to live listeners.
type Publisher interface {
	Publish(userID string, kiss store.Kiss)
}

// Service sends and lists virtual kisses.
type Service interface {
	List(ctx context.Context, userID string) ([]store.Kiss, error)
	Send(ctx context.Context, userID, from, to string) (store.Kiss, error)
}

type service struct {
	store     Store
	publisher Publisher
}

// New wires a Service backed by the provided Store. publisher may be nil.
func New(store Store, publisher Publisher) Service {
	return &service{store: store, publisher: publisher}
}

func (s *service) List(ctx context.Context, userID string) ([]store.Kiss, error) {
	return s.store.ListKisses(ctx, userID)
}

func (s *service) Send(ctx context.Context, userID, from, to string) (store.Kiss, error) {
	kiss, err := s.store.CreateKiss(ctx, store.Kiss{From: from, To: to, UserID: userID})
	if err != nil {
		return store.Kiss{}, err
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, kiss)
	}
	return kiss, nil
}
