package model

import "time"

// Mood is the self-reported mood attached to a journal entry.
type Mood string

const (
	MoodGreat   Mood = "great"
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodLow     Mood = "low"
	MoodRough   Mood = "rough"
)

// Moods lists the selectable moods in display order.
var Moods = []Mood{MoodGreat, MoodGood, MoodNeutral, MoodLow, MoodRough}

// JournalEntry is a dated free-form note with an optional mood.
type JournalEntry struct {
	ID        string    `db:"id"`
	Date      string    `db:"date"` // DateFormat
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Mood      Mood      `db:"mood"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
