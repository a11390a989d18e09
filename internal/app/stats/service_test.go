package stats

import (
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourforever/internal/docstore"
	"ourforever/internal/store"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name                           string
		media, notes, timeline, kisses int
		want                           int
	}{
		{name: "empty", want: 0},
		{name: "weighted", media: 3, notes: 2, timeline: 1, kisses: 4, want: 6 + 10 + 8 + 12},
		{name: "capped", media: 40, notes: 10, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.media, tt.notes, tt.timeline, tt.kisses))
		})
	}
}

func TestScore_Monotonic(t *testing.T) {
	prev := 0
	for i := 0; i < 60; i++ {
		got := Score(i, i/2, i/3, i)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
}

func TestDaysTogether(t *testing.T) {
	now := time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 365, DaysTogether("2023-02-14", now))
	assert.Equal(t, 0, DaysTogether("2024-02-14", now))
	assert.Equal(t, 0, DaysTogether("2030-01-01", now))
	assert.Equal(t, 0, DaysTogether("", now))
	assert.Equal(t, 0, DaysTogether("14/02/2023", now))
}

func TestDaysTogether_AcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 23.5 elapsed hours, but one calendar day.
	now := time.Date(2024, 3, 11, 0, 30, 0, 0, ny)
	assert.Equal(t, 1, DaysTogether("2024-03-10", now))

	now = time.Date(2024, 11, 4, 23, 30, 0, 0, ny)
	assert.Equal(t, 1, DaysTogether("2024-11-03", now))
}

func TestSummaryAndLoveMeter(t *testing.T) {
	st := store.New(docstore.NewMemoryStore())
	svc := &service{store: st, now: func() time.Time { return time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC) }}
	ctx := context.Background()

	create := func(userID, filename string, fileType store.FileType, favorite bool) {
		_, err := st.CreateMedia(ctx, store.Media{UserID: userID, Filename: filename, FileType: fileType, IsFavorite: favorite})
		require.NoError(t, err)
	}
	create("u1", "a.png", store.FileTypeImage, true)
	create("u1", "b.png", store.FileTypeImage, false)
	create("u1", "c.mp4", store.FileTypeVideo, true)
	create("u2", "d.png", store.FileTypeImage, false)

	_, err := st.CreateNote(ctx, store.Note{UserID: "u1", Message: "hi", Author: "prem"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := st.CreateNote(ctx, store.Note{UserID: "u2", Message: strings.Repeat("x", i+1), Author: "other"})
		require.NoError(t, err)
	}
	_, err = st.CreateEvent(ctx, store.Event{UserID: "u1", Title: "met", EventDate: "2020-01-01"})
	require.NoError(t, err)
	_, err = st.CreateKiss(ctx, store.Kiss{UserID: "u1", From: "prem", To: "love"})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, store.User{ID: "u1", Anniversary: "2024-02-01"})
	require.NoError(t, err)
	assert.Equal(t, Summary{Images: 2, Videos: 1, Favorites: 2, Total: 3, DaysTogether: 13}, sum)

	meter, err := svc.LoveMeter(ctx, "u1")
	require.NoError(t, err)
	// Other users' notes do not count.
	assert.Equal(t, LoveMeter{Score: 3*2 + 1*5 + 1*8 + 1*3, MediaCount: 3, NotesCount: 1, TimelineCount: 1, KissesCount: 1}, meter)
}
