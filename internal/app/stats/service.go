package stats

import (
	"context"
	"time"

	"ourforever/internal/store"
)

// Love meter weights per record kind.
const (
	mediaWeight    = 2
	noteWeight     = 5
	timelineWeight = 8
	kissWeight     = 3
	maxScore       = 100
)

// Store describes the reads required to compute derived stats.
type Store interface {
	ListMedia(ctx context.Context, userID string, filter store.MediaFilter) ([]store.Media, error)
	ListNotes(ctx context.Context, userID string) ([]store.Note, error)
	ListEvents(ctx context.Context, userID string) ([]store.Event, error)
	ListKisses(ctx context.Context, userID string) ([]store.Kiss, error)
}

// Summary counts a user's album.
type Summary struct {
	Images       int `json:"images"`
	Videos       int `json:"videos"`
	Favorites    int `json:"favorites"`
	Total        int `json:"total"`
	DaysTogether int `json:"days_together"`
}

// LoveMeter is the playful engagement score.
type LoveMeter struct {
	Score         int `json:"score"`
	MediaCount    int `json:"media_count"`
	NotesCount    int `json:"notes_count"`
	TimelineCount int `json:"timeline_count"`
	KissesCount   int `json:"kisses_count"`
}

// Service computes derived numbers from stored records.
type Service interface {
	Summary(ctx context.Context, user store.User) (Summary, error)
	LoveMeter(ctx context.Context, userID string) (LoveMeter, error)
}

type service struct {
	store Store
	now   func() time.Time
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store, now: time.Now}
}

func (s *service) Summary(ctx context.Context, user store.User) (Summary, error) {
	items, err := s.store.ListMedia(ctx, user.ID, store.MediaFilter{})
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, m := range items {
		switch m.FileType {
		case store.FileTypeImage:
			sum.Images++
		case store.FileTypeVideo:
			sum.Videos++
		}
		if m.IsFavorite {
			sum.Favorites++
		}
	}
	sum.Total = sum.Images + sum.Videos
	sum.DaysTogether = DaysTogether(user.Anniversary, s.now())
	return sum, nil
}

func (s *service) LoveMeter(ctx context.Context, userID string) (LoveMeter, error) {
	items, err := s.store.ListMedia(ctx, userID, store.MediaFilter{})
	if err != nil {
		return LoveMeter{}, err
	}
	notes, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return LoveMeter{}, err
	}
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return LoveMeter{}, err
	}
	kisses, err := s.store.ListKisses(ctx, userID)
	if err != nil {
		return LoveMeter{}, err
	}

	meter := LoveMeter{
		MediaCount:    len(items),
		NotesCount:    len(notes),
		TimelineCount: len(events),
		KissesCount:   len(kisses),
	}
	meter.Score = Score(meter.MediaCount, meter.NotesCount, meter.TimelineCount, meter.KissesCount)
	return meter, nil
}

// Score weighs the record counts and caps the result at 100.
func Score(media, notes, timeline, kisses int) int {
	return min(maxScore, media*mediaWeight+notes*noteWeight+timeline*timelineWeight+kisses*kissWeight)
}

// DaysTogether returns whole days since anniversary, or 0 when it is empty,
// malformed or in the future.
func DaysTogether(anniversary string, now time.Time) int {
	if anniversary == "" {
		return 0
	}
	start, err := time.Parse(time.DateOnly, anniversary)
	if err != nil {
		return 0
	}
	// Whole calendar days; DST in now's zone does not shorten a day.
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(start).Hours() / 24)
	return max(0, days)
}
