package store

import (
	"context"

	"github.com/lullapp/lull/internal/model"
)

// JournalFilter controls filtering and pagination for journal queries.
type JournalFilter struct {
	Date   *string // exact date (model.DateFormat) or nil (all)
	Mood   *string
	Query  *string // search title + body
	Limit  int
	Offset int
}

// Store defines the persistence interface for progress records, journal
// entries, and user settings.
type Store interface {
	// === Progress ===

	UpsertProgress(ctx context.Context, rec model.ProgressRecord) error
	GetDaily(ctx context.Context, date string) (model.DailySummary, error)
	GetRange(ctx context.Context, startDate, endDate string) ([]model.DailySummary, error)
	DeleteProgress(ctx context.Context, date string, category model.Category) error

	// === Journal ===

	CreateJournalEntry(ctx context.Context, entry model.JournalEntry) error
	UpdateJournalEntry(ctx context.Context, entry model.JournalEntry) error
	DeleteJournalEntry(ctx context.Context, id string) error
	GetJournalEntryByID(ctx context.Context, id string) (*model.JournalEntry, error)
	GetJournalEntries(ctx context.Context, filter JournalFilter) ([]model.JournalEntry, error)

	// === Settings ===

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
