// Package routine drives the user's private weekly routine: reading it,
// stepping block statuses, reordering and duplicating days.
package routine

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
)

// ErrBlockNotFound is returned when a block id is in neither the routine nor
// today's projection.
var ErrBlockNotFound = errors.New("block not found")

// ErrDayNotFound is returned when a day id or weekday has no routine day.
var ErrDayNotFound = errors.New("routine day not found")

type Service struct {
	api      *api.Client
	store    *cache.Store
	runner   *optimistic.Runner
	notifier notify.Notifier
}

func New(client *api.Client, runner *optimistic.Runner, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		api:      client,
		store:    runner.Store(),
		runner:   runner,
		notifier: notifier,
	}
}

// Routine returns the whole weekly routine with blocks sorted by order.
func (s *Service) Routine(ctx context.Context, refresh bool) (models.Routine, error) {
	if !refresh {
		if r, ok, err := cache.Load[models.Routine](s.store, cache.RoutineKey()); err == nil && ok {
			return r, nil
		}
	}

	r, err := s.api.GetRoutine(ctx)
	if err != nil {
		return models.Routine{}, herrors.Wrap(err, constants.MsgRoutineFetchFailed)
	}
	if err := r.Validate(); err != nil {
		logger.Warn("Routine from server is inconsistent", "error", err)
	}
	for i := range r.Days {
		r.Days[i].SortBlocks()
	}
	if err := cache.Put(s.store, cache.RoutineKey(), r); err != nil {
		logger.Warn("Failed to cache routine", "error", err)
	}
	return r, nil
}

// Today returns the routine day for the current weekday.
func (s *Service) Today(ctx context.Context, refresh bool) (models.RoutineDay, error) {
	if !refresh {
		if d, ok, err := cache.Load[models.RoutineDay](s.store, cache.TodayRoutineKey()); err == nil && ok {
			return d, nil
		}
	}

	d, err := s.api.GetTodayRoutine(ctx)
	if err != nil {
		return models.RoutineDay{}, herrors.Wrap(err, constants.MsgRoutineFetchFailed)
	}
	d.SortBlocks()
	if err := cache.Put(s.store, cache.TodayRoutineKey(), d); err != nil {
		logger.Warn("Failed to cache today's routine", "error", err)
	}
	return d, nil
}

// cachedBlock finds a block in today's projection or the routine, whichever
// is cached.
func (s *Service) cachedBlock(id string) (models.RoutineBlock, bool) {
	if d, ok, err := cache.Load[models.RoutineDay](s.store, cache.TodayRoutineKey()); err == nil && ok {
		if i := d.Block(id); i >= 0 {
			return d.Blocks[i], true
		}
	}
	if r, ok, err := cache.Load[models.Routine](s.store, cache.RoutineKey()); err == nil && ok {
		if day, i := r.FindBlock(id); day != nil {
			return day.Blocks[i], true
		}
	}
	return models.RoutineBlock{}, false
}

// block returns the block, loading the routine if nothing cached has it.
func (s *Service) block(ctx context.Context, id string) (models.RoutineBlock, error) {
	if b, ok := s.cachedBlock(id); ok {
		return b, nil
	}
	r, err := s.Routine(ctx, false)
	if err != nil {
		return models.RoutineBlock{}, err
	}
	day, i := r.FindBlock(id)
	if day == nil {
		return models.RoutineBlock{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	return day.Blocks[i], nil
}

// Advance takes the guided step for a block: NULL→VISUALIZED→DONE. A DONE
// block is terminal and advancing it is a no-op.
func (s *Service) Advance(ctx context.Context, blockID string) (models.RoutineBlock, error) {
	b, err := s.block(ctx, blockID)
	if err != nil {
		return models.RoutineBlock{}, err
	}
	if b.Status.IsTerminal() {
		return b, optimistic.ErrNoop
	}
	return s.setStatus(ctx, blockID, b.Status.Next())
}

// SetStatus sets a block's status directly. Unless force is set the change
// must be in the transition table; the API itself accepts any value.
func (s *Service) SetStatus(ctx context.Context, blockID string, status models.BlockStatus, force bool) (models.RoutineBlock, error) {
	b, err := s.block(ctx, blockID)
	if err != nil {
		return models.RoutineBlock{}, err
	}
	if b.Status == status {
		return b, optimistic.ErrNoop
	}
	if !force {
		if _, err := b.Status.Transition(status); err != nil {
			return b, err
		}
	}
	return s.setStatus(ctx, blockID, status)
}

func (s *Service) setStatus(ctx context.Context, blockID string, status models.BlockStatus) (models.RoutineBlock, error) {
	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.RoutineBlock]{
		Key:     "block/" + blockID,
		Queries: []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Done: func(*cache.Store) bool {
			b, ok := s.cachedBlock(blockID)
			return ok && b.Status == status
		},
		Patch: func(store *cache.Store) error {
			return patchBlock(store, blockID, func(b *models.RoutineBlock) {
				b.Status = status
			})
		},
		Request: func(ctx context.Context) (models.RoutineBlock, error) {
			return s.api.SetBlockStatus(ctx, blockID, status)
		},
		Reconcile:    []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Refetch:      s.refetch,
		ErrorMessage: constants.MsgBlockStatusFailed,
	})
}

// refetch reloads both projections of the routine.
func (s *Service) refetch(ctx context.Context) error {
	if _, err := s.Routine(ctx, true); err != nil {
		return err
	}
	_, err := s.Today(ctx, true)
	return err
}

// patchRoutine edits the cached routine if present.
func patchRoutine(store *cache.Store, fn func(*models.Routine) error) error {
	_, err := cache.Update(store, cache.RoutineKey(), fn)
	return err
}

// patchToday edits the cached today projection if present.
func patchToday(store *cache.Store, fn func(*models.RoutineDay) error) error {
	_, err := cache.Update(store, cache.TodayRoutineKey(), fn)
	return err
}

// patchBlock applies fn to the block in both projections.
func patchBlock(store *cache.Store, blockID string, fn func(*models.RoutineBlock)) error {
	if err := patchRoutine(store, func(r *models.Routine) error {
		day, i := r.FindBlock(blockID)
		if day == nil {
			return cache.ErrSkip
		}
		fn(&day.Blocks[i])
		return nil
	}); err != nil {
		return err
	}
	return patchToday(store, func(d *models.RoutineDay) error {
		i := d.Block(blockID)
		if i < 0 {
			return cache.ErrSkip
		}
		fn(&d.Blocks[i])
		return nil
	})
}

// patchDay applies fn to the day with dayID in both projections.
func patchDay(store *cache.Store, dayID string, fn func(*models.RoutineDay)) error {
	if err := patchRoutine(store, func(r *models.Routine) error {
		day := r.DayByID(dayID)
		if day == nil {
			return cache.ErrSkip
		}
		fn(day)
		return nil
	}); err != nil {
		return err
	}
	return patchToday(store, func(d *models.RoutineDay) error {
		if d.ID != dayID {
			return cache.ErrSkip
		}
		fn(d)
		return nil
	})
}
