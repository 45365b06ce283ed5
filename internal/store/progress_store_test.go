package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/store"
	"github.com/lullapp/lull/tests/testutil"
)

func TestUpsertProgressOverwritesOnConflict(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date:     "2024-01-01",
		Category: model.CategorySleep,
		Value:    7,
		Achieved: false,
	}))
	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date:     "2024-01-01",
		Category: model.CategorySleep,
		Value:    9,
		Achieved: true,
		Notes:    "slept in",
	}))

	daily, err := s.GetDaily(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, daily.Records, 1)
	assert.Equal(t, 9.0, daily.Records[0].Value)
	assert.True(t, daily.Records[0].Achieved)
	assert.Equal(t, "slept in", daily.Records[0].Notes)
}

func TestUpsertProgressRejectsUnknownCategory(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.UpsertProgress(context.Background(), model.ProgressRecord{
		Date:     "2024-01-01",
		Category: model.Category("naps"),
		Value:    1,
	})
	assert.Error(t, err)
}

func TestUpsertProgressRejectsBadDate(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.UpsertProgress(context.Background(), model.ProgressRecord{
		Date:     "01/02/2024",
		Category: model.CategorySleep,
		Value:    8,
	})
	assert.Error(t, err)
}

func TestGetDailyStarCount(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date: "2024-03-05", Category: model.CategorySleep, Value: 8.5, Achieved: true,
	}))
	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date: "2024-03-05", Category: model.CategoryMindfulness, Value: 0, Achieved: false,
	}))
	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date: "2024-03-05", Category: model.CategoryFocus, Achieved: true,
	}))

	daily, err := s.GetDaily(ctx, "2024-03-05")
	require.NoError(t, err)
	assert.Len(t, daily.Records, 3)
	assert.Equal(t, 2, daily.Stars)
}

func TestGetDailyEmptyDate(t *testing.T) {
	s := testutil.NewTestStore(t)

	daily, err := s.GetDaily(context.Background(), "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, daily.Records)
	assert.Equal(t, 0, daily.Stars)
	assert.Equal(t, "2024-06-01", daily.Date)
}

func TestGetRangeGroupsByDateInclusive(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	start, _ := time.Parse(model.DateFormat, "2024-02-01")
	for i := 0; i < 4; i++ {
		date := start.AddDate(0, 0, i).Format(model.DateFormat)
		require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
			Date: date, Category: model.CategorySleep, Value: 8, Achieved: true,
		}))
	}
	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date: "2024-02-02", Category: model.CategoryFocus, Achieved: true,
	}))

	summaries, err := s.GetRange(ctx, "2024-02-01", "2024-02-03")
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "2024-02-01", summaries[0].Date)
	assert.Equal(t, "2024-02-03", summaries[2].Date)
	assert.Len(t, summaries[1].Records, 2)
	assert.Equal(t, 2, summaries[1].Stars)
}

func TestDeleteProgressIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProgress(ctx, model.ProgressRecord{
		Date: "2024-04-01", Category: model.CategoryFocus, Achieved: true,
	}))
	require.NoError(t, s.DeleteProgress(ctx, "2024-04-01", model.CategoryFocus))
	require.NoError(t, s.DeleteProgress(ctx, "2024-04-01", model.CategoryFocus))

	daily, err := s.GetDaily(ctx, "2024-04-01")
	require.NoError(t, err)
	assert.Empty(t, daily.Records)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetSetting(ctx, "sleep_goal_hours")
	assert.ErrorIs(t, err, store.ErrSettingNotFound)

	require.NoError(t, s.SetSetting(ctx, "sleep_goal_hours", "7.5"))
	require.NoError(t, s.SetSetting(ctx, "sleep_goal_hours", "9"))

	v, err := s.GetSetting(ctx, "sleep_goal_hours")
	require.NoError(t, err)
	assert.Equal(t, "9", v)
}
