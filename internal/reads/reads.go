// Package reads serves the reading of the day.
package reads

import (
	"context"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
)

type Service struct {
	api   *api.Client
	store *cache.Store
}

func New(client *api.Client, store *cache.Store) *Service {
	return &Service{api: client, store: store}
}

// Today returns today's reading. A cached reading from an earlier date is
// treated as missing.
func (s *Service) Today(ctx context.Context, refresh bool) (models.DailyRead, error) {
	key := cache.TodayReadKey()
	if !refresh {
		if r, ok, err := cache.Load[models.DailyRead](s.store, key); err == nil && ok && s.current(r) {
			return r, nil
		}
	}

	r, err := s.api.TodayRead(ctx)
	if err != nil {
		return models.DailyRead{}, herrors.Wrap(err, constants.MsgDailyReadFailed)
	}
	if err := cache.Put(s.store, key, r); err != nil {
		logger.Warn("Failed to cache daily read", "error", err)
	}
	return r, nil
}

func (s *Service) current(r models.DailyRead) bool {
	if r.Date == "" {
		return true
	}
	return r.Date == s.store.Now().Format(constants.DateFormat)
}
