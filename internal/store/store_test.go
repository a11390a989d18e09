package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourforever/internal/docstore"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *docstore.MemoryStore, *fakeClock) {
	t.Helper()
	docs := docstore.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)}
	return New(docs, WithClock(clock.Now), WithSessionTTL(24*time.Hour)), docs, clock
}

func mustCreateUser(t *testing.T, s *Store, username, email string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), User{Username: username, Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func TestCreateUser_DuplicatesIgnoreCase(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	_, err := s.CreateUser(ctx, User{Username: "ALICE", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = s.CreateUser(ctx, User{Username: "bob", Email: "Alice@Example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.CreateUser(ctx, User{Username: "", Email: "c@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := s.UserByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = s.UserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetProfileImageAndPassword(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", "alice@example.com")

	require.NoError(t, s.SetProfileImage(ctx, alice.ID, "abc.png"))
	require.NoError(t, s.SetPasswordHash(ctx, alice.ID, "new-hash"))

	got, err := s.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc.png", got.ProfileImage)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, s.SetProfileImage(ctx, "nope", "x.png"), ErrUserNotFound)
}

func TestSessions_Lifecycle(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", "alice@example.com")

	token, err := s.CreateSession(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := s.CreateSession(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	user, err := s.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = s.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.ResolveSession(ctx, "unknown")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, s.DeleteSession(ctx, token))
	require.NoError(t, s.DeleteSession(ctx, token))
	_, err = s.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	clock.Advance(25 * time.Hour)
	_, err = s.ResolveSession(ctx, other)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateSession_PurgesExpired(t *testing.T) {
	s, docs, clock := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", "alice@example.com")

	_, err := s.CreateSession(ctx, alice.ID)
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)
	fresh, err := s.CreateSession(ctx, alice.ID)
	require.NoError(t, err)

	var doc sessionsDoc
	require.NoError(t, docs.Load(ctx, "sessions", &doc))
	assert.Len(t, doc.Sessions, 1)
	assert.Contains(t, doc.Sessions, fresh)
}

func TestResolveSession_DanglingUser(t *testing.T) {
	s, _, _ := newTestStore(t)
	token, err := s.CreateSession(context.Background(), "ghost")
	require.NoError(t, err)

	_, err = s.ResolveSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMedia_OwnershipAndOrdering(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateMedia(ctx, Media{UserID: "u1", Filename: "a.png", FileType: FileTypeImage, Category: "dates"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := s.CreateMedia(ctx, Media{UserID: "u1", Filename: "b.mp4", FileType: FileTypeVideo, Category: "travel"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = s.CreateMedia(ctx, Media{UserID: "u2", Filename: "c.png", FileType: FileTypeImage, Category: "dates"})
	require.NoError(t, err)

	all, err := s.ListMedia(ctx, "u1", MediaFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	images, err := s.ListMedia(ctx, "u1", MediaFilter{FileType: FileTypeImage})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, first.ID, images[0].ID)

	travel, err := s.ListMedia(ctx, "u1", MediaFilter{Category: "travel"})
	require.NoError(t, err)
	require.Len(t, travel, 1)
	assert.Equal(t, "videos/b.mp4", travel[0].Key())

	_, err = s.MediaByID(ctx, first.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteMedia(ctx, first.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ToggleFavorite(ctx, first.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMedia_OrderingIsChronologicalAcrossPrecision(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	// RFC 3339 drops trailing zeros, so string order would put these the wrong way round.
	clock.now = time.Date(2024, 2, 14, 9, 0, 0, 500_000_000, time.UTC)
	older, err := s.CreateMedia(ctx, Media{UserID: "u1", Filename: "a.png", FileType: FileTypeImage})
	require.NoError(t, err)
	clock.now = time.Date(2024, 2, 14, 9, 0, 1, 0, time.UTC)
	newer, err := s.CreateMedia(ctx, Media{UserID: "u1", Filename: "b.png", FileType: FileTypeImage})
	require.NoError(t, err)

	items, err := s.ListMedia(ctx, "u1", MediaFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
}

func TestMedia_PatchToggleDelete(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateMedia(ctx, Media{UserID: "u1", Filename: "a.png", FileType: FileTypeImage, Category: "dates", Caption: "old"})
	require.NoError(t, err)

	caption := "beach day"
	updated, err := s.UpdateMedia(ctx, item.ID, "u1", MediaPatch{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "beach day", updated.Caption)
	assert.Equal(t, "dates", updated.Category)

	fav, err := s.ToggleFavorite(ctx, item.ID, "u1")
	require.NoError(t, err)
	assert.True(t, fav)
	fav, err = s.ToggleFavorite(ctx, item.ID, "u1")
	require.NoError(t, err)
	assert.False(t, fav)

	removed, err := s.DeleteMedia(ctx, item.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", removed.Key())

	items, err := s.ListMedia(ctx, "u1", MediaFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateMedia_Validation(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.CreateMedia(context.Background(), Media{UserID: "u1", Filename: "a.exe", FileType: "binary"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTimeline_SortedByEventDate(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, Event{UserID: "u1", Title: "First date", EventDate: "2020-05-01"})
	require.NoError(t, err)
	later, err := s.CreateEvent(ctx, Event{UserID: "u1", Title: "Engagement", EventDate: "2023-08-12"})
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, Event{UserID: "u1", Title: "", EventDate: "2023-08-12"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	events, err := s.ListEvents(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, later.ID, events[0].ID)
	assert.Nil(t, events[0].Image)

	_, err = s.DeleteEvent(ctx, later.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	removed, err := s.DeleteEvent(ctx, later.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Engagement", removed.Title)
}

func TestNotes_DefaultsAndDelete(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	note, err := s.CreateNote(ctx, Note{UserID: "u1", Message: "love you", Author: "prem"})
	require.NoError(t, err)
	assert.Equal(t, DefaultNoteColor, note.Color)

	_, err = s.CreateNote(ctx, Note{UserID: "u1", Message: " ", Author: "prem"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, s.DeleteNote(ctx, note.ID, "u2"), ErrNotFound)
	require.NoError(t, s.DeleteNote(ctx, note.ID, "u1"))

	notes, err := s.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestKisses_NewestFirst(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateKiss(ctx, Kiss{UserID: "u1", From: "prem", To: "love"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := s.CreateKiss(ctx, Kiss{UserID: "u1", From: "love", To: "prem"})
	require.NoError(t, err)
	_, err = s.CreateKiss(ctx, Kiss{UserID: "u1", From: "prem"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	kisses, err := s.ListKisses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, kisses, 2)
	assert.Equal(t, second.ID, kisses[0].ID)
}

func TestSetMood_UpsertsPerAuthorAndDate(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	_, err := s.SetMood(ctx, Mood{UserID: "u1", Mood: "happy", Author: "prem", Date: "2024-02-14"})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = s.SetMood(ctx, Mood{UserID: "u1", Mood: "sleepy", Author: "prem", Date: "2024-02-14"})
	require.NoError(t, err)
	_, err = s.SetMood(ctx, Mood{UserID: "u1", Mood: "excited", Author: "love", Date: "2024-02-14"})
	require.NoError(t, err)
	_, err = s.SetMood(ctx, Mood{UserID: "u2", Mood: "calm", Author: "prem", Date: "2024-02-14"})
	require.NoError(t, err)

	moods, err := s.ListMoods(ctx, "u1", "2024-02-14")
	require.NoError(t, err)
	require.Len(t, moods, 2)
	byAuthor := map[string]string{}
	for _, m := range moods {
		byAuthor[m.Author] = m.Mood
	}
	assert.Equal(t, map[string]string{"prem": "sleepy", "love": "excited"}, byAuthor)

	other, err := s.ListMoods(ctx, "u1", "2024-02-15")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTimestamp_AcceptsLegacyFormat(t *testing.T) {
	var rec struct {
		CreatedAt Timestamp `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"created_at":"2023-06-01T18:30:15.123456"}`), &rec))
	assert.Equal(t, time.Date(2023, 6, 1, 18, 30, 15, 123456000, time.UTC), rec.CreatedAt.Time)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"created_at":"2023-06-01T18:30:15.123456Z"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"created_at":"yesterday"}`), &rec))
}

func TestUpdate_DoesNotSaveOnError(t *testing.T) {
	s, docs, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateMedia(ctx, "missing", "u1", MediaPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	var raw map[string]any
	require.NoError(t, docs.Load(ctx, "media", &raw))
	assert.Nil(t, raw)
}

func TestCanceledContext(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListNotes(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}
