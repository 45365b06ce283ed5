package soundlist

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"

	"github.com/lullapp/lull/internal/model"
)

func soundRow(t *testing.T, d ItemDelegate, item SoundItem) string {
	t.Helper()
	l := list.New([]list.Item{item}, d, 80, 24)
	var sb strings.Builder
	d.Render(&sb, l, 1, item)
	return sb.String()
}

func TestRenderShowsProgressBarWhileDownloading(t *testing.T) {
	downloading := map[string]float64{"rain": 0.5}
	d := newItemDelegate(downloading)

	item := SoundItem{Item: model.ContentItem{
		ID:          "rain",
		Title:       "Rain",
		Kind:        model.KindSleepSound,
		AudioURL:    "https://cdn.example.com/rain.mp3",
		DurationSec: 60,
	}}

	out := soundRow(t, d, item)
	assert.Contains(t, out, "↓")
	assert.Contains(t, out, d.bar.ViewAs(0.5))

	delete(downloading, "rain")
	item.Downloaded = true
	out = soundRow(t, d, item)
	assert.NotContains(t, out, "↓")
	assert.Contains(t, out, "●")
}
