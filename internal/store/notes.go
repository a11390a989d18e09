package store

import (
	"context"
	"slices"
	"strings"
)

// DefaultNoteColor is used when a note is created without a color.
const DefaultNoteColor = "pink"

// Note is a short love note.
type Note struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Color     string    `json:"color"`
	Author    string    `json:"author"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    string    `json:"user_id"`
}

type notesDoc struct {
	Notes []Note `json:"notes"`
}

// ListNotes returns the user's notes, newest first.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]Note, error) {
	doc, err := s.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0, len(doc.Notes))
	for _, n := range doc.Notes {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	slices.SortStableFunc(notes, func(a, b Note) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return notes, nil
}

// CreateNote appends a note. Message and author are required.
func (s *Store) CreateNote(ctx context.Context, note Note) (Note, error) {
	note.Message = strings.TrimSpace(note.Message)
	note.Author = strings.TrimSpace(note.Author)
	if note.UserID == "" {
		return Note{}, invalid("user id is required")
	}
	if note.Message == "" || note.Author == "" {
		return Note{}, invalid("message and author are required")
	}
	if note.Color == "" {
		note.Color = DefaultNoteColor
	}
	if note.ID == "" {
		note.ID = newID()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = s.timestamp()
	}

	err := s.notes.update(ctx, func(doc *notesDoc) error {
		doc.Notes = append(doc.Notes, note)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// DeleteNote removes a note owned by userID.
func (s *Store) DeleteNote(ctx context.Context, id, userID string) error {
	return s.notes.update(ctx, func(doc *notesDoc) error {
		for i, n := range doc.Notes {
			if n.ID == id && n.UserID == userID {
				doc.Notes = slices.Delete(doc.Notes, i, i+1)
				return nil
			}
		}
		return ErrNotFound
	})
}
