package model

// ContentKind identifies the kind of content item in the catalog.
type ContentKind string

const (
	KindSleepSound ContentKind = "sleep_sound"
	KindMeditation ContentKind = "meditation"
	KindFocusSound ContentKind = "focus_sound"
	KindBreathing  ContentKind = "breathing"
)

// ContentItem is a single entry in the content catalog: a playable sound,
// a guided meditation, or a breathing exercise.
type ContentItem struct {
	// ID is the stable identifier used for caching and favorites.
	ID string `json:"id"`

	// Kind classifies the item (sleep sound, meditation, ...).
	Kind ContentKind `json:"kind"`

	// Title is the display name.
	Title string `json:"title"`

	// DurationSec is the nominal length in seconds; 0 means loopable.
	DurationSec int `json:"duration_sec"`

	// Color is a hex accent color for list rendering.
	Color string `json:"color"`

	// Icon is a short glyph shown next to the title.
	Icon string `json:"icon"`

	// ThumbnailURL is an optional artwork URL.
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// AudioURL is the remote location of the audio file. Items without
	// an audio URL (e.g. breathing exercises) are not playable.
	AudioURL string `json:"audio_url,omitempty"`

	// Description is a short blurb shown in the detail panel.
	Description string `json:"description,omitempty"`
}

// Playable reports whether the item has audio that can be streamed or cached.
func (c ContentItem) Playable() bool {
	return c.AudioURL != ""
}
