package dreams

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/hekate/internal/apitest"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/validation"
)

type fixture struct {
	srv   *apitest.Server
	svc   *Service
	store *cache.Store
	rec   *notify.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer(t)
	store, err := cache.New(cache.Options{TTL: time.Hour})
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return &fixture{
		srv:   srv,
		svc:   New(srv.Client(t), optimistic.NewRunner(store, rec)),
		store: store,
		rec:   rec,
	}
}

// dreamServer serves a single active dream whose slot is consumed by a
// successful visualize call.
type dreamServer struct {
	mu    sync.Mutex
	dream models.Dream
}

func (d *dreamServer) get() models.Dream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dream
}

func (f *fixture) serveDream(t *testing.T, visualizeStatus int) *dreamServer {
	t.Helper()
	ds := &dreamServer{dream: models.Dream{ID: "d1", Title: "Viajar", CanVisualize: true}}
	f.srv.Handle(http.MethodGet, "/dreams", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, []models.Dream{ds.get()})
	})
	f.srv.Handle(http.MethodPost, "/dreams/{id}/visualize", func(w http.ResponseWriter, r *http.Request) {
		// The optimistic patch is visible while the request is in flight.
		cached, _, _ := cache.Load[[]models.Dream](f.store, cache.DreamsKey(false))
		if len(cached) != 1 || !cached[0].SlotVisualized || cached[0].CanVisualize {
			t.Errorf("cache not patched during request: %+v", cached)
		}
		if visualizeStatus != http.StatusCreated {
			apitest.WriteJSON(w, visualizeStatus, map[string]string{"message": "boom"})
			return
		}
		ds.mu.Lock()
		ds.dream.MarkVisualized()
		ds.dream.TodayVisualizations++
		ds.mu.Unlock()
		apitest.WriteJSON(w, http.StatusCreated, models.Visualization{ID: "v1", DreamID: apitest.Vars(r)["id"]})
	})
	return ds
}

func TestVisualizeSuccess(t *testing.T) {
	f := setup(t)
	f.serveDream(t, http.StatusCreated)
	ctx := context.Background()

	_, err := f.svc.List(ctx, false, false)
	require.NoError(t, err)

	v, err := f.svc.Visualize(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", v.DreamID)

	cached, ok, err := cache.Load[[]models.Dream](f.store, cache.DreamsKey(false))
	require.NoError(t, err)
	require.True(t, ok, "list is refetched after success")
	assert.True(t, cached[0].SlotVisualized)
	assert.False(t, cached[0].CanVisualize)
	assert.Equal(t, 1, cached[0].TodayVisualizations, "server counters come from the refetch")
	assert.Len(t, f.srv.Find(http.MethodGet, "/dreams"), 2)
	assert.Empty(t, f.rec.Errors())
}

func TestVisualizeFailureRestores(t *testing.T) {
	f := setup(t)
	f.serveDream(t, http.StatusInternalServerError)
	ctx := context.Background()

	_, err := f.svc.List(ctx, false, false)
	require.NoError(t, err)
	require.NoError(t, cache.Put(f.store, cache.DreamKey("d1"), models.Dream{ID: "d1", CanVisualize: true}))

	_, err = f.svc.Visualize(ctx, "d1")
	require.Error(t, err)
	assert.Equal(t, constants.MsgDreamVisualizeFailed, herrors.UserMessage(err, ""))

	cached, _, _ := cache.Load[[]models.Dream](f.store, cache.DreamsKey(false))
	assert.False(t, cached[0].SlotVisualized)
	assert.True(t, cached[0].CanVisualize)
	single, _, _ := cache.Load[models.Dream](f.store, cache.DreamKey("d1"))
	assert.False(t, single.SlotVisualized)
	assert.True(t, single.CanVisualize)
	assert.Equal(t, []string{constants.MsgDreamVisualizeFailed}, f.rec.Errors())
}

func TestVisualizeAlreadyVisualizedIsNoop(t *testing.T) {
	f := setup(t)
	require.NoError(t, cache.Put(f.store, cache.DreamsKey(false), []models.Dream{{ID: "d1", SlotVisualized: true}}))

	_, err := f.svc.Visualize(context.Background(), "d1")
	assert.ErrorIs(t, err, optimistic.ErrNoop)
	assert.Empty(t, f.srv.Requests())
}

func TestArchiveFailureRestoresList(t *testing.T) {
	f := setup(t)
	f.srv.Fail(http.MethodPost, "/dreams/{id}/archive", http.StatusBadRequest, "no")
	list := []models.Dream{{ID: "d1"}, {ID: "d2"}}
	require.NoError(t, cache.Put(f.store, cache.DreamsKey(false), list))

	_, err := f.svc.Archive(context.Background(), "d1")
	require.Error(t, err)

	cached, _, _ := cache.Load[[]models.Dream](f.store, cache.DreamsKey(false))
	assert.Equal(t, list, cached)
}

func TestDeleteRemovesAndReconciles(t *testing.T) {
	f := setup(t)
	f.srv.Handle(http.MethodDelete, "/dreams/{id}", func(w http.ResponseWriter, r *http.Request) {
		cached, _, _ := cache.Load[[]models.Dream](f.store, cache.DreamsKey(false))
		assert.Equal(t, []models.Dream{{ID: "d2"}}, cached)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, cache.Put(f.store, cache.DreamsKey(false), []models.Dream{{ID: "d1"}, {ID: "d2"}}))
	require.NoError(t, cache.Put(f.store, cache.DreamKey("d1"), models.Dream{ID: "d1"}))

	require.NoError(t, f.svc.Delete(context.Background(), "d1"))
	_, ok := f.store.Get(cache.DreamKey("d1"))
	assert.False(t, ok)
}

func TestCreateValidatesFirst(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), validation.DreamForm{Title: ""})

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, constants.MsgFieldRequired, errs.Field(validation.FieldTitle))
	assert.Empty(t, f.srv.Requests())
}

func TestCreateInvalidatesList(t *testing.T) {
	f := setup(t)
	f.srv.JSON(http.MethodPost, "/dreams", http.StatusCreated, models.Dream{ID: "d9", Title: "Nuevo"})
	require.NoError(t, cache.Put(f.store, cache.DreamsKey(false), []models.Dream{}))

	d, err := f.svc.Create(context.Background(), validation.DreamForm{Title: "Nuevo"})
	require.NoError(t, err)
	assert.Equal(t, "d9", d.ID)
	_, ok := f.store.Get(cache.DreamsKey(false))
	assert.False(t, ok)
}

func TestGetFallsBackToCachedList(t *testing.T) {
	f := setup(t)
	require.NoError(t, cache.Put(f.store, cache.DreamsKey(true), []models.Dream{{ID: "old", IsArchived: true}}))

	d, err := f.svc.Get(context.Background(), "old", false)
	require.NoError(t, err)
	assert.True(t, d.IsArchived)
	assert.Empty(t, f.srv.Requests())
}

func TestDetectImageType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	tests := []struct {
		name    string
		file    string
		size    int64
		head    []byte
		want    string
		wantMsg string
	}{
		{name: "png by content", file: "x.bin", size: 10, head: png, want: "image/png"},
		{name: "jpeg by content", file: "x", size: 10, head: []byte("\xff\xd8\xff\xe0"), want: "image/jpeg"},
		{name: "heic by extension", file: "foto.HEIC", size: 10, head: []byte("\x00\x00\x00\x18ftypheic"), want: "image/heic"},
		{name: "text rejected", file: "notes.txt", size: 10, head: []byte("hello"), wantMsg: constants.MsgImageType},
		{name: "too large", file: "big.png", size: constants.MaxImageBytes + 1, head: png, wantMsg: constants.MsgImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectImageType(tt.file, tt.size, tt.head)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, herrors.UserMessage(err, ""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUploadImage(t *testing.T) {
	f := setup(t)
	f.srv.Handle(http.MethodPost, "/dream-images/dream/{id}", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		apitest.WriteJSON(w, http.StatusCreated, models.DreamImage{
			ID:       "img1",
			DreamID:  apitest.Vars(r)["id"],
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
		})
	})
	require.NoError(t, cache.Put(f.store, cache.DreamImagesKey("d1"), []models.DreamImage{}))

	path := filepath.Join(t.TempDir(), "vision.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest-of-image"), 0644))

	img, err := f.svc.UploadImage(context.Background(), "d1", path)
	require.NoError(t, err)
	assert.Equal(t, "vision.png", img.FileName)
	assert.Equal(t, "image/png", img.MimeType)
	_, ok := f.store.Get(cache.DreamImagesKey("d1"))
	assert.False(t, ok, "gallery is refetched after upload")
}

func TestDeleteImageFailureRestores(t *testing.T) {
	f := setup(t)
	f.srv.Fail(http.MethodDelete, "/dream-images/{id}", http.StatusInternalServerError, "boom")
	images := []models.DreamImage{{ID: "i1"}, {ID: "i2"}}
	require.NoError(t, cache.Put(f.store, cache.DreamImagesKey("d1"), images))

	err := f.svc.DeleteImage(context.Background(), "d1", "i1")
	require.Error(t, err)
	cached, _, _ := cache.Load[[]models.DreamImage](f.store, cache.DreamImagesKey("d1"))
	assert.Equal(t, images, cached)
	assert.Equal(t, []string{constants.MsgImageDeleteFailed}, f.rec.Errors())
}
