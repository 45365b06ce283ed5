package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lullapp/lull/internal/model"
)

// UpsertProgress inserts a progress record or, when one already exists for
// the same (date, category), overwrites its value, times, achieved flag, and
// notes in a single statement.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, rec model.ProgressRecord) error {
	if !rec.Category.Valid() {
		return fmt.Errorf("unknown category %q", rec.Category)
	}
	if _, err := time.Parse(model.DateFormat, rec.Date); err != nil {
		return fmt.Errorf("invalid progress date %q: %w", rec.Date, err)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (
			id, date, category, value, start_time, end_time,
			achieved, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, category) DO UPDATE SET
			value      = excluded.value,
			start_time = excluded.start_time,
			end_time   = excluded.end_time,
			achieved   = excluded.achieved,
			notes      = excluded.notes,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Date, rec.Category, rec.Value, rec.StartTime, rec.EndTime,
		boolToInt(rec.Achieved), rec.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting progress %s/%s: %w", rec.Date, rec.Category, err)
	}
	return nil
}

// GetDaily retrieves the up-to-three records for a date together with the
// derived star count.
func (s *SQLiteStore) GetDaily(ctx context.Context, date string) (model.DailySummary, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM progress WHERE date = ? ORDER BY category", date,
	)
	if err != nil {
		return model.DailySummary{}, fmt.Errorf("querying progress for %s: %w", date, err)
	}
	defer rows.Close()

	summary := model.DailySummary{Date: date}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return model.DailySummary{}, err
		}
		summary.Records = append(summary.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return model.DailySummary{}, fmt.Errorf("iterating progress rows: %w", err)
	}

	summary.Stars = model.CountStars(summary.Records)
	return summary, nil
}

// GetRange retrieves daily summaries for every date in [startDate, endDate]
// that has at least one record, grouped by date in ascending order.
func (s *SQLiteStore) GetRange(ctx context.Context, startDate, endDate string) ([]model.DailySummary, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM progress WHERE date >= ? AND date <= ? ORDER BY date, category",
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("querying progress range %s..%s: %w", startDate, endDate, err)
	}
	defer rows.Close()

	var summaries []model.DailySummary
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		if len(summaries) == 0 || summaries[len(summaries)-1].Date != rec.Date {
			summaries = append(summaries, model.DailySummary{Date: rec.Date})
		}
		last := &summaries[len(summaries)-1]
		last.Records = append(last.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress rows: %w", err)
	}

	for i := range summaries {
		summaries[i].Stars = model.CountStars(summaries[i].Records)
	}
	return summaries, nil
}

// DeleteProgress removes the record for (date, category). Deleting a record
// that does not exist is not an error.
func (s *SQLiteStore) DeleteProgress(ctx context.Context, date string, category model.Category) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM progress WHERE date = ? AND category = ?", date, category,
	)
	if err != nil {
		return fmt.Errorf("deleting progress %s/%s: %w", date, category, err)
	}
	return nil
}

// scanProgress scans a progress row from a sqlx.Rows result set.
func scanProgress(rows *sqlx.Rows) (model.ProgressRecord, error) {
	var (
		rec      model.ProgressRecord
		category string
		achieved int
	)

	err := rows.Scan(
		&rec.ID, &rec.Date, &category, &rec.Value,
		&rec.StartTime, &rec.EndTime, &achieved, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return model.ProgressRecord{}, fmt.Errorf("scanning progress row: %w", err)
	}

	rec.Category = model.Category(category)
	rec.Achieved = achieved != 0
	return rec, nil
}
