// Package dreams reads and mutates the user's dreams through the query cache.
package dreams

import (
	"context"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/validation"
)

type Service struct {
	api    *api.Client
	store  *cache.Store
	runner *optimistic.Runner
}

func New(client *api.Client, runner *optimistic.Runner) *Service {
	return &Service{
		api:    client,
		store:  runner.Store(),
		runner: runner,
	}
}

// List returns the dreams, from cache unless refresh is set or the entry is
// missing or stale.
func (s *Service) List(ctx context.Context, archived, refresh bool) ([]models.Dream, error) {
	key := cache.DreamsKey(archived)
	if !refresh {
		if dreams, ok, err := cache.Load[[]models.Dream](s.store, key); err == nil && ok {
			return dreams, nil
		}
	}

	dreams, err := s.api.ListDreams(ctx, archived)
	if err != nil {
		return nil, herrors.Wrap(err, constants.MsgDreamsFetchFailed)
	}
	if err := cache.Put(s.store, key, dreams); err != nil {
		logger.Warn("Failed to cache dreams", "error", err)
	}
	return dreams, nil
}

// Get returns one dream. A cached list entry is good enough when the dream
// itself has not been fetched.
func (s *Service) Get(ctx context.Context, id string, refresh bool) (models.Dream, error) {
	key := cache.DreamKey(id)
	if !refresh {
		if d, ok, err := cache.Load[models.Dream](s.store, key); err == nil && ok {
			return d, nil
		}
		if d, ok := s.findCached(id); ok {
			return d, nil
		}
	}

	d, err := s.api.GetDream(ctx, id)
	if err != nil {
		return models.Dream{}, herrors.Wrap(err, constants.MsgDreamsFetchFailed)
	}
	if err := cache.Put(s.store, key, d); err != nil {
		logger.Warn("Failed to cache dream", "id", id, "error", err)
	}
	return d, nil
}

func (s *Service) findCached(id string) (models.Dream, bool) {
	for _, archived := range []bool{false, true} {
		dreams, ok, err := cache.Load[[]models.Dream](s.store, cache.DreamsKey(archived))
		if err != nil || !ok {
			continue
		}
		for _, d := range dreams {
			if d.ID == id {
				return d, true
			}
		}
	}
	return models.Dream{}, false
}

func (s *Service) Create(ctx context.Context, form validation.DreamForm) (models.Dream, error) {
	if err := form.Validate(); err != nil {
		return models.Dream{}, err
	}
	d, err := s.api.CreateDream(ctx, models.DreamInput{Title: form.Title, Text: form.Text})
	if err != nil {
		return models.Dream{}, herrors.Wrap(err, constants.MsgDreamCreateFailed)
	}
	s.store.Invalidate(cache.DreamsKey(false))
	return d, nil
}

func (s *Service) Update(ctx context.Context, id string, form validation.DreamForm) (models.Dream, error) {
	if err := form.Validate(); err != nil {
		return models.Dream{}, err
	}
	d, err := s.api.UpdateDream(ctx, id, models.DreamInput{Title: form.Title, Text: form.Text})
	if err != nil {
		return models.Dream{}, herrors.Wrap(err, constants.MsgDreamUpdateFailed)
	}
	if err := cache.Put(s.store, cache.DreamKey(id), d); err != nil {
		logger.Warn("Failed to cache dream", "id", id, "error", err)
	}
	s.store.InvalidatePrefix(cache.PrefixDreams)
	return d, nil
}

// Visualize records today's visualization. The slot is marked consumed in
// every cached view before the request; a dream whose slot is already
// consumed is a no-op.
func (s *Service) Visualize(ctx context.Context, id string) (models.Visualization, error) {
	queries := []cache.Key{cache.DreamsKey(false), cache.DreamKey(id)}
	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.Visualization]{
		Key:     "visualize/" + id,
		Queries: queries,
		Done: func(store *cache.Store) bool {
			d, ok := s.cachedDream(id)
			return ok && d.Visualized()
		},
		Patch: func(store *cache.Store) error {
			return patchVisualized(store, id)
		},
		Request: func(ctx context.Context) (models.Visualization, error) {
			return s.api.VisualizeDream(ctx, id)
		},
		Reconcile: append(queries, cache.TodayRoutineKey()),
		Refetch: func(ctx context.Context) error {
			_, err := s.List(ctx, false, true)
			return err
		},
		ErrorMessage:   constants.MsgDreamVisualizeFailed,
		SuccessMessage: constants.MsgDreamVisualized,
	})
}

func (s *Service) cachedDream(id string) (models.Dream, bool) {
	if d, ok, err := cache.Load[models.Dream](s.store, cache.DreamKey(id)); err == nil && ok {
		return d, true
	}
	return s.findCached(id)
}

// patchVisualized consumes today's slot for id in the active list and the
// dream entry, whichever are cached.
func patchVisualized(store *cache.Store, id string) error {
	if _, err := cache.Update(store, cache.DreamsKey(false), func(dreams *[]models.Dream) error {
		for i := range *dreams {
			if (*dreams)[i].ID == id {
				(*dreams)[i].MarkVisualized()
				return nil
			}
		}
		return cache.ErrSkip
	}); err != nil {
		return err
	}
	_, err := cache.Update(store, cache.DreamKey(id), func(d *models.Dream) error {
		d.MarkVisualized()
		return nil
	})
	return err
}

// removeDream drops id from a cached list.
func removeDream(store *cache.Store, key cache.Key, id string) error {
	_, err := cache.Update(store, key, func(dreams *[]models.Dream) error {
		out := (*dreams)[:0]
		for _, d := range *dreams {
			if d.ID != id {
				out = append(out, d)
			}
		}
		if len(out) == len(*dreams) {
			return cache.ErrSkip
		}
		*dreams = out
		return nil
	})
	return err
}

// Archive moves a dream out of the active list.
func (s *Service) Archive(ctx context.Context, id string) (models.Dream, error) {
	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.Dream]{
		Key:     "dream/" + id,
		Queries: []cache.Key{cache.DreamsKey(false)},
		Patch: func(store *cache.Store) error {
			return removeDream(store, cache.DreamsKey(false), id)
		},
		Request: func(ctx context.Context) (models.Dream, error) {
			return s.api.ArchiveDream(ctx, id)
		},
		Reconcile:         []cache.Key{cache.DreamKey(id)},
		ReconcilePrefixes: []string{cache.PrefixDreams},
		ErrorMessage:      constants.MsgDreamArchiveFailed,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Key:     "dream/" + id,
		Queries: []cache.Key{cache.DreamsKey(false), cache.DreamsKey(true)},
		Patch: func(store *cache.Store) error {
			if err := removeDream(store, cache.DreamsKey(false), id); err != nil {
				return err
			}
			return removeDream(store, cache.DreamsKey(true), id)
		},
		Request: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteDream(ctx, id)
		},
		Reconcile:    []cache.Key{cache.DreamKey(id), cache.DreamImagesKey(id), cache.TodayRoutineKey()},
		ErrorMessage: constants.MsgDreamDeleteFailed,
	})
	return err
}
