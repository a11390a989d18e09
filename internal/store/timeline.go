package store

import (
	"context"
	"slices"
	"strings"
)

// Event is a milestone on the couple's timeline.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   string    `json:"event_date"`
	Image       *string   `json:"image"`
	ImageKey    string    `json:"image_key,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UserID      string    `json:"user_id"`
}

type timelineDoc struct {
	Events []Event `json:"events"`
}

// ListEvents returns the user's events, latest event date first.
func (s *Store) ListEvents(ctx context.Context, userID string) ([]Event, error) {
	doc, err := s.timeline.read(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(doc.Events))
	for _, e := range doc.Events {
		if e.UserID == userID {
			events = append(events, e)
		}
	}
	slices.SortStableFunc(events, func(a, b Event) int { return strings.Compare(b.EventDate, a.EventDate) })
	return events, nil
}

// CreateEvent appends a timeline event. Title and event date are required.
func (s *Store) CreateEvent(ctx context.Context, event Event) (Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	event.EventDate = strings.TrimSpace(event.EventDate)
	if event.UserID == "" {
		return Event{}, invalid("user id is required")
	}
	if event.Title == "" || event.EventDate == "" {
		return Event{}, invalid("title and event date are required")
	}
	if event.ID == "" {
		event.ID = newID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.timestamp()
	}

	err := s.timeline.update(ctx, func(doc *timelineDoc) error {
		doc.Events = append(doc.Events, event)
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// DeleteEvent removes an event and returns it.
func (s *Store) DeleteEvent(ctx context.Context, id, userID string) (Event, error) {
	var removed Event
	err := s.timeline.update(ctx, func(doc *timelineDoc) error {
		for i, e := range doc.Events {
			if e.ID == id && e.UserID == userID {
				removed = e
				doc.Events = slices.Delete(doc.Events, i, i+1)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return Event{}, err
	}
	return removed, nil
}
