package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/store"
	"github.com/lullapp/lull/tests/testutil"
)

func TestJournalCreateAndGet(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	entry := model.JournalEntry{
		Date:  "2024-05-10",
		Title: "Evening wind-down",
		Body:  "Rain sounds helped tonight.",
		Mood:  model.MoodGood,
	}
	require.NoError(t, s.CreateJournalEntry(ctx, entry))

	entries, err := s.GetJournalEntries(ctx, store.JournalFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Evening wind-down", entries[0].Title)
	assert.Equal(t, model.MoodGood, entries[0].Mood)
	assert.NotEmpty(t, entries[0].ID)

	got, err := s.GetJournalEntryByID(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Rain sounds helped tonight.", got.Body)
}

func TestJournalCreateRequiresTitle(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.CreateJournalEntry(context.Background(), model.JournalEntry{
		Date: "2024-05-10",
	})
	assert.Error(t, err)
}

func TestJournalUpdate(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateJournalEntry(ctx, model.JournalEntry{
		ID:    "j1",
		Date:  "2024-05-11",
		Title: "first",
	}))

	require.NoError(t, s.UpdateJournalEntry(ctx, model.JournalEntry{
		ID:    "j1",
		Date:  "2024-05-11",
		Title: "second",
		Mood:  model.MoodLow,
	}))

	got, err := s.GetJournalEntryByID(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, model.MoodLow, got.Mood)

	err = s.UpdateJournalEntry(ctx, model.JournalEntry{ID: "missing", Title: "x"})
	assert.Error(t, err)
}

func TestJournalDelete(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateJournalEntry(ctx, model.JournalEntry{
		ID: "j2", Date: "2024-05-12", Title: "gone soon",
	}))
	require.NoError(t, s.DeleteJournalEntry(ctx, "j2"))

	_, err := s.GetJournalEntryByID(ctx, "j2")
	assert.Error(t, err)

	err = s.DeleteJournalEntry(ctx, "j2")
	assert.Error(t, err)
}

func TestJournalFilterByQueryAndMood(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateJournalEntry(ctx, model.JournalEntry{
		Date: "2024-05-13", Title: "Morning meditation", Mood: model.MoodGreat,
	}))
	require.NoError(t, s.CreateJournalEntry(ctx, model.JournalEntry{
		Date: "2024-05-14", Title: "Bad night", Body: "too much coffee", Mood: model.MoodRough,
	}))

	q := "coffee"
	entries, err := s.GetJournalEntries(ctx, store.JournalFilter{Query: &q})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bad night", entries[0].Title)

	mood := string(model.MoodGreat)
	entries, err = s.GetJournalEntries(ctx, store.JournalFilter{Mood: &mood})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Morning meditation", entries[0].Title)
}
