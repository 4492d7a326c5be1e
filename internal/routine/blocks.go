package routine

import (
	"context"
	"fmt"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/validation"
)

// CreateBlock appends a block to the weekday, creating the day if the
// routine has none for it yet. The block shows up in the cache under a
// placeholder id until the routine is refetched.
func (s *Service) CreateBlock(ctx context.Context, wd models.WeekDay, form validation.BlockForm) (models.RoutineBlock, error) {
	if err := form.Validate(); err != nil {
		return models.RoutineBlock{}, err
	}
	r, err := s.Routine(ctx, false)
	if err != nil {
		return models.RoutineBlock{}, err
	}
	existing := r.Day(wd)
	order := 0
	if existing != nil {
		order = len(existing.Blocks)
	}
	placeholder := models.RoutineBlock{
		ID:          placeholderID(),
		WeekDay:     wd,
		Title:       form.Title,
		Description: form.Description,
		Color:       form.Color,
		Order:       order,
		Status:      models.StatusNull,
	}

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.RoutineBlock]{
		Key:     "weekday/" + string(wd),
		Queries: []cache.Key{cache.RoutineKey()},
		Patch: func(store *cache.Store) error {
			return patchRoutine(store, func(r *models.Routine) error {
				day := r.Day(wd)
				if day == nil {
					r.Days = append(r.Days, models.RoutineDay{WeekDay: wd})
					day = &r.Days[len(r.Days)-1]
				}
				placeholder.RoutineDayID = day.ID
				day.Blocks = append(day.Blocks, placeholder)
				return nil
			})
		},
		Request: func(ctx context.Context) (models.RoutineBlock, error) {
			dayID := ""
			if existing != nil {
				dayID = existing.ID
			} else {
				day, err := s.api.CreateRoutineDay(ctx, wd)
				if err != nil {
					return models.RoutineBlock{}, fmt.Errorf("creating %s: %w", wd, err)
				}
				dayID = day.ID
			}
			in := models.BlockInput{Title: form.Title, Description: form.Description, Color: form.Color, Order: &order}
			return s.api.CreateBlock(ctx, dayID, in)
		},
		Reconcile:    []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Refetch:      s.refetch,
		ErrorMessage: constants.MsgBlockCreateFailed,
	})
}

func (s *Service) UpdateBlock(ctx context.Context, blockID string, form validation.BlockForm) (models.RoutineBlock, error) {
	if err := form.Validate(); err != nil {
		return models.RoutineBlock{}, err
	}
	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.RoutineBlock]{
		Key:     "block/" + blockID,
		Queries: []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Patch: func(store *cache.Store) error {
			return patchBlock(store, blockID, func(b *models.RoutineBlock) {
				b.Title = form.Title
				b.Description = form.Description
				b.Color = form.Color
			})
		},
		Request: func(ctx context.Context) (models.RoutineBlock, error) {
			return s.api.UpdateBlock(ctx, blockID, models.BlockInput{
				Title:       form.Title,
				Description: form.Description,
				Color:       form.Color,
			})
		},
		Reconcile:    []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Refetch:      s.refetch,
		ErrorMessage: constants.MsgBlockUpdateFailed,
	})
}

// DeleteBlock removes a block and closes the gap in its day's order.
func (s *Service) DeleteBlock(ctx context.Context, blockID string) error {
	remove := func(d *models.RoutineDay) {
		i := d.Block(blockID)
		if i < 0 {
			return
		}
		d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
		d.Renumber()
	}

	_, err := optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Key:     "block/" + blockID,
		Queries: []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Patch: func(store *cache.Store) error {
			if err := patchRoutine(store, func(r *models.Routine) error {
				day, _ := r.FindBlock(blockID)
				if day == nil {
					return cache.ErrSkip
				}
				remove(day)
				return nil
			}); err != nil {
				return err
			}
			return patchToday(store, func(d *models.RoutineDay) error {
				remove(d)
				return nil
			})
		},
		Request: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteBlock(ctx, blockID)
		},
		Reconcile:    []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Refetch:      s.refetch,
		ErrorMessage: constants.MsgBlockDeleteFailed,
	})
	return err
}
