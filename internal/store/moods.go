package store

import (
	"context"
	"slices"
	"strings"
)

// Mood is one partner's mood for a calendar day.
type Mood struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    string    `json:"user_id"`
}

type moodsDoc struct {
	Moods []Mood `json:"moods"`
}

// ListMoods returns the user's moods for date, newest first. An empty date
// returns every mood.
func (s *Store) ListMoods(ctx context.Context, userID, date string) ([]Mood, error) {
	doc, err := s.moods.read(ctx)
	if err != nil {
		return nil, err
	}
	moods := make([]Mood, 0, len(doc.Moods))
	for _, m := range doc.Moods {
		if m.UserID == userID && (date == "" || m.Date == date) {
			moods = append(moods, m)
		}
	}
	slices.SortStableFunc(moods, func(a, b Mood) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return moods, nil
}

// SetMood stores mood, replacing any earlier mood with the same user, author and date.
func (s *Store) SetMood(ctx context.Context, mood Mood) (Mood, error) {
	mood.Mood = strings.TrimSpace(mood.Mood)
	mood.Author = strings.TrimSpace(mood.Author)
	if mood.UserID == "" {
		return Mood{}, invalid("user id is required")
	}
	if mood.Mood == "" || mood.Author == "" || mood.Date == "" {
		return Mood{}, invalid("mood, author and date are required")
	}
	if mood.ID == "" {
		mood.ID = newID()
	}
	if mood.CreatedAt.IsZero() {
		mood.CreatedAt = s.timestamp()
	}

	err := s.moods.update(ctx, func(doc *moodsDoc) error {
		doc.Moods = slices.DeleteFunc(doc.Moods, func(m Mood) bool {
			return m.UserID == mood.UserID && m.Author == mood.Author && m.Date == mood.Date
		})
		doc.Moods = append(doc.Moods, mood)
		return nil
	})
	if err != nil {
		return Mood{}, err
	}
	return mood, nil
}
