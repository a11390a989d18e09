package notes

import (
	"context"

	"ourforever/internal/store"
)

// Store describes the persistence operations required by the notes service.
type Store interface {
	ListNotes(ctx context.Context, userID string) ([]store.Note, error)
	CreateNote(ctx context.Context, note store.Note) (store.Note, error)
	DeleteNote(ctx context.Context, id, userID string) error
}

// NoteInput carries a new love note.
type NoteInput struct {
	Message string
	Color   string
	Author  string
}

// Service manages love notes.
type Service interface {
	List(ctx context.Context, userID string) ([]store.Note, error)
	Create(ctx context.Context, userID string, in NoteInput) (store.Note, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, userID string) ([]store.Note, error) {
	return s.store.ListNotes(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, in NoteInput) (store.Note, error) {
	return s.store.CreateNote(ctx, store.Note{
		Message: in.Message,
		Color:   in.Color,
		Author:  in.Author,
		UserID:  userID,
	})
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	return s.store.DeleteNote(ctx, id, userID)
}
