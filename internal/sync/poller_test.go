package sync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/health"
	"github.com/lullapp/lull/internal/sync"
)

func sample(source string, start time.Time, minutes int) health.Sample {
	return health.Sample{
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Source:    source,
	}
}

func TestSleepHoursByDateUsesDominantSource(t *testing.T) {
	night := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	// Phone and watch both recorded the same night: count the larger
	// total, not the sum.
	samples := []health.Sample{
		sample("Apple Watch", night, 7*60+30),
		sample("iPhone", night.Add(30*time.Minute), 6*60),
	}

	totals := sync.SleepHoursByDate(samples)
	require.Len(t, totals, 1)
	assert.InDelta(t, 7.5, totals["2026-03-02"], 0.001)
}

func TestSleepHoursAttributedToWakeDate(t *testing.T) {
	samples := []health.Sample{
		sample("Watch", time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC), 8*60),
		sample("Watch", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), 6*60),
	}

	totals := sync.SleepHoursByDate(samples)
	require.Len(t, totals, 2)
	assert.InDelta(t, 8.0, totals["2026-03-02"], 0.001)
	assert.InDelta(t, 6.0, totals["2026-03-03"], 0.001)
}

func TestMindfulMinutesSumAcrossSessions(t *testing.T) {
	day := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	samples := []health.Sample{
		sample("lull", day, 10),
		sample("lull", day.Add(12*time.Hour), 5),
		// Zero-length sessions are ignored.
		sample("other", day, 0),
	}

	totals := sync.MindfulMinutesByDate(samples)
	require.Len(t, totals, 1)
	assert.InDelta(t, 15.0, totals["2026-03-02"], 0.001)
}
