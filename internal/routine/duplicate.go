package routine

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
)

// placeholderPrefix marks ids of blocks that exist only in the cache until
// the server answers.
const placeholderPrefix = "tmp-"

func placeholderID() string {
	return placeholderPrefix + uuid.NewString()
}

// ReplaceBlocks returns target with its blocks replaced by copies of
// source's blocks, ordered 0..k-1 with a fresh status. Nothing of target's
// previous blocks is kept.
func ReplaceBlocks(source, target models.RoutineDay) models.RoutineDay {
	sorted := sortedBlocks(source)
	blocks := make([]models.RoutineBlock, len(sorted))
	for i, b := range sorted {
		blocks[i] = models.RoutineBlock{
			ID:           placeholderID(),
			RoutineDayID: target.ID,
			WeekDay:      target.WeekDay,
			Title:        b.Title,
			Description:  b.Description,
			Color:        b.Color,
			Order:        i,
			Status:       models.StatusNull,
		}
	}
	target.Blocks = blocks
	return target
}

// sortedBlocks returns day's blocks in order without touching day's slice.
func sortedBlocks(day models.RoutineDay) []models.RoutineBlock {
	day.Blocks = slices.Clone(day.Blocks)
	day.SortBlocks()
	return day.Blocks
}

// TargetResult is the outcome of duplicating into one weekday.
type TargetResult struct {
	WeekDay models.WeekDay
	Err     error
}

// Summary reports how many target days were duplicated.
type Summary struct {
	Succeeded int
	Total     int
	Results   []TargetResult
}

// Message is the user-facing "M of N" line in its all, partial or none
// variant.
func (s Summary) Message() string {
	switch {
	case s.Succeeded == s.Total:
		return fmt.Sprintf(constants.MsgDuplicateAllOK, s.Succeeded, s.Total)
	case s.Succeeded == 0:
		return fmt.Sprintf(constants.MsgDuplicateAllFailed, s.Succeeded, s.Total)
	default:
		return fmt.Sprintf(constants.MsgDuplicatePartial, s.Succeeded, s.Total)
	}
}

func (s Summary) level() notify.Level {
	switch {
	case s.Succeeded == s.Total:
		return notify.LevelSuccess
	case s.Succeeded == 0:
		return notify.LevelError
	default:
		return notify.LevelInfo
	}
}

// Failed returns the weekdays that could not be duplicated.
func (s Summary) Failed() []models.WeekDay {
	var out []models.WeekDay
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r.WeekDay)
		}
	}
	return out
}

// Duplicate copies the blocks of source into every target weekday,
// replacing whatever the target had. Targets are processed one after the
// other; a failure on one does not stop the rest, and only the failed
// target's cached day is rolled back. The returned error is non-nil only
// when no target succeeded.
func (s *Service) Duplicate(ctx context.Context, source models.WeekDay, targets []models.WeekDay) (Summary, error) {
	// Targets are cleared by id, so start from the server's current routine.
	r, err := s.Routine(ctx, true)
	if err != nil {
		return Summary{}, err
	}
	src := r.Day(source)
	if src == nil {
		return Summary{}, fmt.Errorf("%w: %s", ErrDayNotFound, source)
	}

	seen := map[models.WeekDay]bool{source: true}
	var days []models.WeekDay
	for _, wd := range targets {
		if seen[wd] {
			continue
		}
		seen[wd] = true
		days = append(days, wd)
	}
	if len(days) == 0 {
		return Summary{}, fmt.Errorf("no target days other than %s", source)
	}

	summary := Summary{Total: len(days)}
	for _, wd := range days {
		if ctx.Err() != nil {
			summary.Results = append(summary.Results, TargetResult{WeekDay: wd, Err: ctx.Err()})
			continue
		}
		err := s.duplicateInto(ctx, *src, r.Day(wd), wd)
		if err != nil {
			logger.Warn("Failed to duplicate routine day", "source", source, "target", wd, "error", err)
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, TargetResult{WeekDay: wd, Err: err})
	}

	// The server may have been partially written even for failed targets.
	s.store.Invalidate(cache.RoutineKey(), cache.TodayRoutineKey())
	if ctx.Err() == nil {
		if err := s.refetch(ctx); err != nil {
			logger.Warn("Refetch after duplicate failed", "error", err)
		}
		s.notifier.Notify(summary.level(), summary.Message())
	}

	if summary.Succeeded == 0 {
		return summary, &herrors.UserError{Message: summary.Message(), Cause: summary.Results[0].Err}
	}
	return summary, nil
}

// duplicateInto replaces one target day. existing is the target as cached
// before any change, nil when the weekday has no day yet.
func (s *Service) duplicateInto(ctx context.Context, source models.RoutineDay, existing *models.RoutineDay, wd models.WeekDay) error {
	target := models.RoutineDay{WeekDay: wd, RoutineID: source.RoutineID}
	if existing != nil {
		target = *existing
	}
	replaced := ReplaceBlocks(source, target)

	_, err := optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Key:     "weekday/" + string(wd),
		Queries: []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Patch: func(store *cache.Store) error {
			if err := patchRoutine(store, func(r *models.Routine) error {
				if day := r.Day(wd); day != nil {
					*day = replaced
					return nil
				}
				r.Days = append(r.Days, replaced)
				return nil
			}); err != nil {
				return err
			}
			return patchToday(store, func(d *models.RoutineDay) error {
				if d.WeekDay != wd {
					return cache.ErrSkip
				}
				d.Blocks = slices.Clone(replaced.Blocks)
				return nil
			})
		},
		Request: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.replaceOnServer(ctx, source, existing, wd)
		},
	})
	return err
}

// replaceOnServer deletes every block of the target day, creating the day
// first if needed, then recreates the source blocks in order.
func (s *Service) replaceOnServer(ctx context.Context, source models.RoutineDay, existing *models.RoutineDay, wd models.WeekDay) error {
	var dayID string
	if existing == nil {
		day, err := s.api.CreateRoutineDay(ctx, wd)
		if err != nil {
			return fmt.Errorf("creating %s: %w", wd, err)
		}
		dayID = day.ID
	} else {
		dayID = existing.ID
		for _, b := range existing.Blocks {
			if err := s.api.DeleteBlock(ctx, b.ID); err != nil {
				return fmt.Errorf("clearing %s: %w", wd, err)
			}
		}
	}

	for i, b := range sortedBlocks(source) {
		order := i
		in := models.BlockInput{Title: b.Title, Description: b.Description, Color: b.Color, Order: &order}
		if _, err := s.api.CreateBlock(ctx, dayID, in); err != nil {
			return fmt.Errorf("copying block %q to %s: %w", b.Title, wd, err)
		}
	}
	return nil
}
