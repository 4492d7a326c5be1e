package routine

import (
	"context"
	"fmt"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
)

// Move returns a copy of blocks with the block at from moved to index to,
// and Order rewritten as the dense position.
func Move(blocks []models.RoutineBlock, from, to int) ([]models.RoutineBlock, error) {
	if from < 0 || from >= len(blocks) || to < 0 || to >= len(blocks) {
		return nil, fmt.Errorf("move %d→%d out of range for %d blocks", from, to, len(blocks))
	}

	out := make([]models.RoutineBlock, 0, len(blocks))
	moved := blocks[from]
	for i, b := range blocks {
		if i != from {
			out = append(out, b)
		}
	}
	out = append(out[:to], append([]models.RoutineBlock{moved}, out[to:]...)...)
	models.Renumber(out)
	return out, nil
}

func blockIDs(blocks []models.RoutineBlock) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

// Reorder moves a block within a day and submits the full id list. The
// cached order is rolled back if the server refuses.
func (s *Service) Reorder(ctx context.Context, dayID string, from, to int) ([]models.RoutineBlock, error) {
	r, err := s.Routine(ctx, false)
	if err != nil {
		return nil, err
	}
	day := r.DayByID(dayID)
	if day == nil {
		return nil, fmt.Errorf("%w: %s", ErrDayNotFound, dayID)
	}
	day.SortBlocks()
	if from == to {
		return day.Blocks, optimistic.ErrNoop
	}
	reordered, err := Move(day.Blocks, from, to)
	if err != nil {
		return nil, err
	}

	_, err = optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Key:     "day/" + dayID,
		Queries: []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Patch: func(store *cache.Store) error {
			return patchDay(store, dayID, func(d *models.RoutineDay) {
				d.Blocks = append([]models.RoutineBlock(nil), reordered...)
			})
		},
		Request: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.ReorderBlocks(ctx, dayID, blockIDs(reordered))
		},
		Reconcile:    []cache.Key{cache.RoutineKey(), cache.TodayRoutineKey()},
		Refetch:      s.refetch,
		ErrorMessage: constants.MsgBlockReorderFailed,
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// MoveBlock moves a block one step up (delta -1) or down (delta +1).
func (s *Service) MoveBlock(ctx context.Context, blockID string, delta int) ([]models.RoutineBlock, error) {
	r, err := s.Routine(ctx, false)
	if err != nil {
		return nil, err
	}
	day, _ := r.FindBlock(blockID)
	if day == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	day.SortBlocks()
	from := day.Block(blockID)
	to := from + delta
	if to < 0 || to >= len(day.Blocks) {
		return day.Blocks, optimistic.ErrNoop
	}
	return s.Reorder(ctx, day.ID, from, to)
}
