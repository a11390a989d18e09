package timeline

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ourforever/internal/app/media"
	"ourforever/internal/blob"
	"ourforever/internal/store"
)

// Store describes the persistence operations required by the timeline service.
type Store interface {
	ListEvents(ctx context.Context, userID string) ([]store.Event, error)
	CreateEvent(ctx context.Context, event store.Event) (store.Event, error)
	DeleteEvent(ctx context.Context, id, userID string) (store.Event, error)
}

// EventInput carries the fields of a new event.
type EventInput struct {
	Title       string
	Description string
	EventDate   string
}

// Service manages relationship milestones.
type Service interface {
	List(ctx context.Context, userID string) ([]store.Event, error)
	Create(ctx context.Context, userID string, in EventInput, image *media.Upload) (store.Event, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	store Store
	blobs blob.Store
}

// New wires a Service backed by the provided Store and blob storage.
func New(store Store, blobs blob.Store) Service {
	return &service{store: store, blobs: blobs}
}

func (s *service) List(ctx context.Context, userID string) ([]store.Event, error) {
	return s.store.ListEvents(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, in EventInput, image *media.Upload) (store.Event, error) {
	if err := ctx.Err(); err != nil {
		return store.Event{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.EventDate = strings.TrimSpace(in.EventDate)
	if in.Title == "" || in.EventDate == "" {
		return store.Event{}, fmt.Errorf("%w: title and event date are required", store.ErrInvalidInput)
	}
	if _, err := time.Parse(time.DateOnly, in.EventDate); err != nil {
		return store.Event{}, fmt.Errorf("%w: event date must be YYYY-MM-DD", store.ErrInvalidInput)
	}

	event := store.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
		UserID:      userID,
	}

	if image != nil && image.Filename != "" {
		if !media.IsImage(image.Filename) {
			return store.Event{}, fmt.Errorf("%w: only image files allowed", media.ErrUnsupportedFileType)
		}
		key := blob.Key("timeline", event.ID+media.Ext(image.Filename))
		if _, err := s.blobs.Put(ctx, key, image.Body); err != nil {
			return store.Event{}, fmt.Errorf("save timeline image: %w", err)
		}
		url := s.blobs.URL(key)
		event.Image = &url
		event.ImageKey = key
	}

	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		if event.ImageKey != "" {
			if delErr := s.blobs.Delete(ctx, event.ImageKey); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("key", event.ImageKey).Msg("remove orphaned timeline image")
			}
		}
		return store.Event{}, err
	}
	return created, nil
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	removed, err := s.store.DeleteEvent(ctx, id, userID)
	if err != nil {
		return err
	}
	key := imageKey(removed)
	if key == "" {
		return nil
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("remove timeline image")
	}
	return nil
}

// imageKey falls back to the URL's last segment for events saved without a key.
func imageKey(e store.Event) string {
	if e.ImageKey != "" {
		return e.ImageKey
	}
	if e.Image == nil || *e.Image == "" {
		return ""
	}
	return blob.Key("timeline", path.Base(*e.Image))
}
