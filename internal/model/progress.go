package model

import "time"

// Category identifies one of the three tracked wellness categories.
type Category string

const (
	CategorySleep       Category = "sleep"
	CategoryMindfulness Category = "mindfulness"
	CategoryFocus       Category = "focus"
)

// Categories lists all tracked categories in display order.
var Categories = []Category{CategorySleep, CategoryMindfulness, CategoryFocus}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySleep, CategoryMindfulness, CategoryFocus:
		return true
	}
	return false
}

// DateFormat is the canonical layout for progress dates.
const DateFormat = "2006-01-02"

// ProgressRecord is one day's entry for a single category. At most one
// record exists per (date, category).
type ProgressRecord struct {
	ID       string   `db:"id"`
	Date     string   `db:"date"` // DateFormat
	Category Category `db:"category"`

	// Value is hours for sleep and minutes for mindfulness; unused for focus.
	Value float64 `db:"value"`

	StartTime *time.Time `db:"start_time"`
	EndTime   *time.Time `db:"end_time"`
	Achieved  bool       `db:"achieved"`
	Notes     string     `db:"notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DailySummary groups one day's records with the derived star count.
type DailySummary struct {
	Date    string
	Records []ProgressRecord
	Stars   int
}

// CountStars returns the number of achieved categories in records.
func CountStars(records []ProgressRecord) int {
	stars := 0
	for _, r := range records {
		if r.Achieved {
			stars++
		}
	}
	return stars
}
