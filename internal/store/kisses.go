package store

import (
	"context"
	"slices"
	"strings"
)

// Kiss is a virtual kiss sent from one partner to the other.
type Kiss struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    string    `json:"user_id"`
}

type kissesDoc struct {
	Kisses []Kiss `json:"kisses"`
}

// ListKisses returns the user's kisses, newest first.
func (s *Store) ListKisses(ctx context.Context, userID string) ([]Kiss, error) {
	doc, err := s.kisses.read(ctx)
	if err != nil {
		return nil, err
	}
	kisses := make([]Kiss, 0, len(doc.Kisses))
	for _, k := range doc.Kisses {
		if k.UserID == userID {
			kisses = append(kisses, k)
		}
	}
	slices.SortStableFunc(kisses, func(a, b Kiss) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return kisses, nil
}

// CreateKiss records a kiss. The recipient is required.
func (s *Store) CreateKiss(ctx context.Context, kiss Kiss) (Kiss, error) {
	kiss.To = strings.TrimSpace(kiss.To)
	if kiss.UserID == "" {
		return Kiss{}, invalid("user id is required")
	}
	if kiss.To == "" {
		return Kiss{}, invalid("recipient is required")
	}
	if kiss.ID == "" {
		kiss.ID = newID()
	}
	if kiss.CreatedAt.IsZero() {
		kiss.CreatedAt = s.timestamp()
	}

	err := s.kisses.update(ctx, func(doc *kissesDoc) error {
		doc.Kisses = append(doc.Kisses, kiss)
		return nil
	})
	if err != nil {
		return Kiss{}, err
	}
	return kiss, nil
}
