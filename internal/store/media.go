package store

import (
	"context"
	"path"
	"slices"
)

// FileType classifies a media item.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// Media is an uploaded photo or video.
type Media struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileType     FileType  `json:"file_type"`
	Category     string    `json:"category"`
	Caption      string    `json:"caption"`
	DateTaken    string    `json:"date_taken"`
	CreatedAt    Timestamp `json:"created_at"`
	IsFavorite   bool      `json:"is_favorite"`
	FileSize     int64     `json:"file_size"`
	UserID       string    `json:"user_id"`
	URL          string    `json:"url,omitempty"`
}

// Key is the blob key the media file is stored under.
func (m Media) Key() string {
	dir := "images"
	if m.FileType == FileTypeVideo {
		dir = "videos"
	}
	return path.Join(dir, m.Filename)
}

// MediaFilter narrows ListMedia. Empty fields match everything.
type MediaFilter struct {
	FileType FileType
	Category string
}

func (f MediaFilter) match(m Media) bool {
	if f.FileType != "" && m.FileType != f.FileType {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	return true
}

// MediaPatch lists the editable media fields. Nil fields are left unchanged.
type MediaPatch struct {
	Category   *string
	Caption    *string
	DateTaken  *string
	IsFavorite *bool
}

func (p MediaPatch) apply(m *Media) {
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Caption != nil {
		m.Caption = *p.Caption
	}
	if p.DateTaken != nil {
		m.DateTaken = *p.DateTaken
	}
	if p.IsFavorite != nil {
		m.IsFavorite = *p.IsFavorite
	}
}

type mediaDoc struct {
	Media []Media `json:"media"`
}

// ListMedia returns the user's media, newest first.
func (s *Store) ListMedia(ctx context.Context, userID string, filter MediaFilter) ([]Media, error) {
	doc, err := s.media.read(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Media, 0, len(doc.Media))
	for _, m := range doc.Media {
		if m.UserID == userID && filter.match(m) {
			items = append(items, m)
		}
	}
	slices.SortStableFunc(items, func(a, b Media) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return items, nil
}

// MediaByID returns one media item owned by userID.
func (s *Store) MediaByID(ctx context.Context, id, userID string) (Media, error) {
	doc, err := s.media.read(ctx)
	if err != nil {
		return Media{}, err
	}
	for _, m := range doc.Media {
		if m.ID == id && m.UserID == userID {
			return m, nil
		}
	}
	return Media{}, ErrNotFound
}

// CreateMedia appends a media record.
func (s *Store) CreateMedia(ctx context.Context, item Media) (Media, error) {
	if item.UserID == "" || item.Filename == "" {
		return Media{}, invalid("user id and filename are required")
	}
	if item.FileType != FileTypeImage && item.FileType != FileTypeVideo {
		return Media{}, invalid("file type must be image or video")
	}
	if item.ID == "" {
		item.ID = newID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.timestamp()
	}
	item.URL = ""

	err := s.media.update(ctx, func(doc *mediaDoc) error {
		doc.Media = append(doc.Media, item)
		return nil
	})
	if err != nil {
		return Media{}, err
	}
	return item, nil
}

// UpdateMedia applies patch to a media item owned by userID.
func (s *Store) UpdateMedia(ctx context.Context, id, userID string, patch MediaPatch) (Media, error) {
	var updated Media
	err := s.modifyMedia(ctx, id, userID, func(m *Media) {
		patch.apply(m)
		updated = *m
	})
	return updated, err
}

// ToggleFavorite flips is_favorite and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	var favorite bool
	err := s.modifyMedia(ctx, id, userID, func(m *Media) {
		m.IsFavorite = !m.IsFavorite
		favorite = m.IsFavorite
	})
	return favorite, err
}

// DeleteMedia removes a media record and returns it so the caller can drop the file.
func (s *Store) DeleteMedia(ctx context.Context, id, userID string) (Media, error) {
	var removed Media
	err := s.media.update(ctx, func(doc *mediaDoc) error {
		for i, m := range doc.Media {
			if m.ID == id && m.UserID == userID {
				removed = m
				doc.Media = slices.Delete(doc.Media, i, i+1)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return Media{}, err
	}
	return removed, nil
}

func (s *Store) modifyMedia(ctx context.Context, id, userID string, fn func(*Media)) error {
	return s.media.update(ctx, func(doc *mediaDoc) error {
		for i := range doc.Media {
			if doc.Media[i].ID == id && doc.Media[i].UserID == userID {
				fn(&doc.Media[i])
				return nil
			}
		}
		return ErrNotFound
	})
}
