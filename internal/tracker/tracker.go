package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/store"
)

// DefaultSleepGoalHours is the achievement threshold used until the
// user adjusts their sleep goal.
const DefaultSleepGoalHours = 8.0

const sleepGoalKey = "sleep_goal_hours"

// Service records daily wellness progress and derives achievement
// state. Write errors propagate to the caller; read errors degrade to
// empty results so rendering never fails on a storage fault.
type Service struct {
	store  store.Store
	logger *log.Logger
}

// NewService creates a tracker backed by the given store. A nil logger
// falls back to the standard logger.
func NewService(s store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: s, logger: logger}
}

// SleepGoalHours returns the configured sleep goal, falling back to the
// default when no goal has been saved yet.
func (s *Service) SleepGoalHours(ctx context.Context) float64 {
	raw, err := s.store.GetSetting(ctx, sleepGoalKey)
	if err != nil {
		if !errors.Is(err, store.ErrSettingNotFound) {
			s.logger.Printf("tracker: reading sleep goal: %v", err)
		}
		return DefaultSleepGoalHours
	}

	goal, err := strconv.ParseFloat(raw, 64)
	if err != nil || goal <= 0 {
		s.logger.Printf("tracker: invalid stored sleep goal %q", raw)
		return DefaultSleepGoalHours
	}
	return goal
}

// SetSleepGoalHours persists a new sleep goal.
func (s *Service) SetSleepGoalHours(ctx context.Context, hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("sleep goal must be positive, got %v", hours)
	}
	value := strconv.FormatFloat(hours, 'f', -1, 64)
	if err := s.store.SetSetting(ctx, sleepGoalKey, value); err != nil {
		s.logger.Printf("tracker: saving sleep goal: %v", err)
		return err
	}
	return nil
}

// TrackSleep upserts the sleep record for a date. The record is marked
// achieved when the slept hours meet the configured goal.
func (s *Service) TrackSleep(
	ctx context.Context,
	date string,
	hours float64,
	startTime, endTime *time.Time,
	notes string,
) error {
	record := model.ProgressRecord{
		Date:      date,
		Category:  model.CategorySleep,
		Value:     hours,
		StartTime: startTime,
		EndTime:   endTime,
		Achieved:  hours >= s.SleepGoalHours(ctx),
		Notes:     notes,
	}
	if err := s.store.UpsertProgress(ctx, record); err != nil {
		s.logger.Printf("tracker: tracking sleep for %s: %v", date, err)
		return err
	}
	return nil
}

// TrackMindfulness upserts the mindfulness record for a date. Any
// positive number of minutes counts as achieved.
func (s *Service) TrackMindfulness(
	ctx context.Context,
	date string,
	minutes float64,
	startTime, endTime *time.Time,
	notes string,
) error {
	record := model.ProgressRecord{
		Date:      date,
		Category:  model.CategoryMindfulness,
		Value:     minutes,
		StartTime: startTime,
		EndTime:   endTime,
		Achieved:  minutes > 0,
		Notes:     notes,
	}
	if err := s.store.UpsertProgress(ctx, record); err != nil {
		s.logger.Printf("tracker: tracking mindfulness for %s: %v", date, err)
		return err
	}
	return nil
}

// TrackFocus upserts the focus record for a date with the achievement
// flag passed through unchanged.
func (s *Service) TrackFocus(ctx context.Context, date string, achieved bool, notes string) error {
	record := model.ProgressRecord{
		Date:     date,
		Category: model.CategoryFocus,
		Achieved: achieved,
		Notes:    notes,
	}
	if achieved {
		record.Value = 1
	}
	if err := s.store.UpsertProgress(ctx, record); err != nil {
		s.logger.Printf("tracker: tracking focus for %s: %v", date, err)
		return err
	}
	return nil
}

// Daily returns the records and star count for a single date. On
// storage failure it logs and returns an empty summary.
func (s *Service) Daily(ctx context.Context, date string) model.DailySummary {
	summary, err := s.store.GetDaily(ctx, date)
	if err != nil {
		s.logger.Printf("tracker: reading daily summary for %s: %v", date, err)
		return model.DailySummary{Date: date}
	}
	return summary
}

// Range returns per-date summaries between startDate and endDate
// inclusive. On storage failure it logs and returns an empty slice.
func (s *Service) Range(ctx context.Context, startDate, endDate string) []model.DailySummary {
	summaries, err := s.store.GetRange(ctx, startDate, endDate)
	if err != nil {
		s.logger.Printf(
			"tracker: reading summaries %s..%s: %v",
			startDate, endDate, err,
		)
		return nil
	}
	return summaries
}
