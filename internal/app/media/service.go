package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ourforever/internal/blob"
	"ourforever/internal/store"
)

// DefaultCategory is assigned to uploads without a category.
const DefaultCategory = "dates"

// ErrUnsupportedFileType is returned for uploads outside the extension allow-list.
var ErrUnsupportedFileType = errors.New("file type not allowed")

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".avi": true, ".mkv": true}
)

// Ext returns the lower-cased extension of filename, including the dot.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsImage reports whether filename has an allowed image extension.
func IsImage(filename string) bool {
	return imageExtensions[Ext(filename)]
}

// Classify maps a file name to image or video by extension.
func Classify(filename string) (store.FileType, error) {
	ext := Ext(filename)
	switch {
	case imageExtensions[ext]:
		return store.FileTypeImage, nil
	case videoExtensions[ext]:
		return store.FileTypeVideo, nil
	default:
		return "", ErrUnsupportedFileType
	}
}

// Store describes the persistence operations required by the media service.
type Store interface {
	ListMedia(ctx context.Context, userID string, filter store.MediaFilter) ([]store.Media, error)
	MediaByID(ctx context.Context, id, userID string) (store.Media, error)
	CreateMedia(ctx context.Context, item store.Media) (store.Media, error)
	UpdateMedia(ctx context.Context, id, userID string, patch store.MediaPatch) (store.Media, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	DeleteMedia(ctx context.Context, id, userID string) (store.Media, error)
}

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Details carries the optional metadata for new uploads.
type Details struct {
	Category  string
	Caption   string
	DateTaken string
}

// BatchResult reports the outcome of one file in a batch upload.
type BatchResult struct {
	Filename string         `json:"filename"`
	Success  bool           `json:"success"`
	ID       string         `json:"id,omitempty"`
	FileType store.FileType `json:"file_type,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Service exposes the photo and video album workflows.
type Service interface {
	List(ctx context.Context, userID string, filter store.MediaFilter) ([]store.Media, error)
	Get(ctx context.Context, id, userID string) (store.Media, error)
	Upload(ctx context.Context, userID string, file Upload, details Details) (store.Media, error)
	UploadBatch(ctx context.Context, userID string, files []Upload, details Details) []BatchResult
	Update(ctx context.Context, id, userID string, patch store.MediaPatch) (store.Media, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	store Store
	blobs blob.Store
	now   func() time.Time
}

// New wires a Service backed by the provided Store and blob storage.
func New(store Store, blobs blob.Store) Service {
	return &service{store: store, blobs: blobs, now: time.Now}
}

func (s *service) List(ctx context.Context, userID string, filter store.MediaFilter) ([]store.Media, error) {
	items, err := s.store.ListMedia(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].URL = s.blobs.URL(items[i].Key())
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id, userID string) (store.Media, error) {
	item, err := s.store.MediaByID(ctx, id, userID)
	if err != nil {
		return store.Media{}, err
	}
	item.URL = s.blobs.URL(item.Key())
	return item, nil
}

func (s *service) Upload(ctx context.Context, userID string, file Upload, details Details) (store.Media, error) {
	if err := ctx.Err(); err != nil {
		return store.Media{}, err
	}
	fileType, err := Classify(file.Filename)
	if err != nil {
		return store.Media{}, err
	}

	id := uuid.NewString()
	item := store.Media{
		ID:           id,
		Filename:     id + Ext(file.Filename),
		OriginalName: file.Filename,
		FileType:     fileType,
		Category:     details.Category,
		Caption:      details.Caption,
		DateTaken:    details.DateTaken,
		UserID:       userID,
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if item.DateTaken == "" {
		item.DateTaken = s.now().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, item.DateTaken); err != nil {
		return store.Media{}, fmt.Errorf("%w: date_taken must be YYYY-MM-DD", store.ErrInvalidInput)
	}

	key := item.Key()
	size, err := s.blobs.Put(ctx, key, file.Body)
	if err != nil {
		return store.Media{}, fmt.Errorf("save file: %w", err)
	}
	item.FileSize = size

	created, err := s.store.CreateMedia(ctx, item)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			zerolog.Ctx(ctx).Warn().Err(delErr).Str("key", key).Msg("remove orphaned upload")
		}
		return store.Media{}, err
	}
	created.URL = s.blobs.URL(key)
	return created, nil
}

func (s *service) UploadBatch(ctx context.Context, userID string, files []Upload, details Details) []BatchResult {
	// Batch uploads always use today's date.
	details.DateTaken = ""
	results := make([]BatchResult, 0, len(files))
	for _, file := range files {
		item, err := s.Upload(ctx, userID, file, details)
		if err != nil {
			results = append(results, BatchResult{Filename: file.Filename, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{
			Filename: file.Filename,
			Success:  true,
			ID:       item.ID,
			FileType: item.FileType,
		})
	}
	return results
}

func (s *service) Update(ctx context.Context, id, userID string, patch store.MediaPatch) (store.Media, error) {
	if patch.DateTaken != nil && *patch.DateTaken != "" {
		if _, err := time.Parse(time.DateOnly, *patch.DateTaken); err != nil {
			return store.Media{}, fmt.Errorf("%w: date_taken must be YYYY-MM-DD", store.ErrInvalidInput)
		}
	}
	item, err := s.store.UpdateMedia(ctx, id, userID, patch)
	if err != nil {
		return store.Media{}, err
	}
	item.URL = s.blobs.URL(item.Key())
	return item, nil
}

func (s *service) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	return s.store.ToggleFavorite(ctx, id, userID)
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	removed, err := s.store.DeleteMedia(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, removed.Key()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", removed.Key()).Msg("remove media file")
	}
	return nil
}
