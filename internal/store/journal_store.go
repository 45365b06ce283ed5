package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lullapp/lull/internal/model"
)

// CreateJournalEntry inserts a new journal entry. Generates a UUID if ID is
// empty and defaults the date to today.
func (s *SQLiteStore) CreateJournalEntry(ctx context.Context, entry model.JournalEntry) error {
	if strings.TrimSpace(entry.Title) == "" {
		return fmt.Errorf("journal title must not be empty")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Date == "" {
		entry.Date = now.Format(model.DateFormat)
	}
	if entry.Mood == "" {
		entry.Mood = model.MoodNeutral
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (id, date, title, body, mood, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Date, entry.Title, entry.Body, entry.Mood,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating journal entry: %w", err)
	}
	return nil
}

// UpdateJournalEntry updates an existing journal entry by ID.
func (s *SQLiteStore) UpdateJournalEntry(ctx context.Context, entry model.JournalEntry) error {
	if strings.TrimSpace(entry.Title) == "" {
		return fmt.Errorf("journal title must not be empty")
	}
	entry.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE journal SET
			date = ?, title = ?, body = ?, mood = ?, updated_at = ?
		WHERE id = ?`,
		entry.Date, entry.Title, entry.Body, entry.Mood, entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating journal entry %s: %w", entry.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("journal entry %s not found", entry.ID)
	}
	return nil
}

// DeleteJournalEntry removes a journal entry by ID.
func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting journal entry %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("journal entry %s not found", id)
	}
	return nil
}

// GetJournalEntryByID retrieves a single journal entry by ID.
func (s *SQLiteStore) GetJournalEntryByID(ctx context.Context, id string) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	var mood string

	err := s.db.QueryRowxContext(ctx, "SELECT * FROM journal WHERE id = ?", id).Scan(
		&entry.ID, &entry.Date, &entry.Title, &entry.Body, &mood,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting journal entry %s: %w", id, err)
	}

	entry.Mood = model.Mood(mood)
	return &entry, nil
}

// GetJournalEntries retrieves journal entries matching the filter, most
// recent date first.
func (s *SQLiteStore) GetJournalEntries(ctx context.Context, filter JournalFilter) ([]model.JournalEntry, error) {
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, *filter.Date)
	}
	if filter.Mood != nil {
		conditions = append(conditions, "mood = ?")
		args = append(args, *filter.Mood)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR body LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM journal"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var entry model.JournalEntry
		var mood string
		err := rows.Scan(
			&entry.ID, &entry.Date, &entry.Title, &entry.Body, &mood,
			&entry.CreatedAt, &entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		entry.Mood = model.Mood(mood)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
