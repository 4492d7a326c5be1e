package routine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/hekate/internal/apitest"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
)

// fakeRoutine is an in-memory private routine served over the fake API.
type fakeRoutine struct {
	mu      sync.Mutex
	routine models.Routine
	today   models.WeekDay
	nextID  int

	failStatus  bool
	failReorder bool
	failDelete  bool
	// failCreateIn rejects block creation in these weekdays.
	failCreateIn map[models.WeekDay]bool
	// onDelete runs before a block delete is applied.
	onDelete func(id string)
}

func (f *fakeRoutine) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeRoutine) snapshot() models.Routine {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, _ := json.Marshal(f.routine)
	var out models.Routine
	_ = json.Unmarshal(raw, &out)
	return out
}

func (f *fakeRoutine) register(srv *apitest.Server) {
	srv.Handle(http.MethodGet, "/private-routines", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, f.snapshot())
	})
	srv.Handle(http.MethodGet, "/private-routines/today", func(w http.ResponseWriter, r *http.Request) {
		rt := f.snapshot()
		day := rt.Day(f.today)
		if day == nil {
			apitest.WriteJSON(w, http.StatusOK, models.RoutineDay{WeekDay: f.today})
			return
		}
		apitest.WriteJSON(w, http.StatusOK, day)
	})
	srv.Handle(http.MethodPut, "/private-routines/blocks/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failStatus {
			apitest.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		var body struct {
			Status models.BlockStatus `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		day, i := f.routine.FindBlock(apitest.Vars(r)["id"])
		if day == nil {
			apitest.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "no block"})
			return
		}
		day.Blocks[i].Status = body.Status
		apitest.WriteJSON(w, http.StatusOK, day.Blocks[i])
	})
	srv.Handle(http.MethodPut, "/private-routines/days/{id}/reorder", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failReorder {
			apitest.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "bad order"})
			return
		}
		var body struct {
			BlockIDs []string `json:"blockIds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		day := f.routine.DayByID(apitest.Vars(r)["id"])
		reordered := make([]models.RoutineBlock, 0, len(body.BlockIDs))
		for _, id := range body.BlockIDs {
			reordered = append(reordered, day.Blocks[day.Block(id)])
		}
		day.Blocks = reordered
		day.Renumber()
		w.WriteHeader(http.StatusOK)
	})
	srv.Handle(http.MethodPost, "/private-routines/days", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body struct {
			WeekDay models.WeekDay `json:"weekDay"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		day := models.RoutineDay{ID: f.id("day-"), RoutineID: f.routine.ID, WeekDay: body.WeekDay, Blocks: []models.RoutineBlock{}}
		f.routine.Days = append(f.routine.Days, day)
		apitest.WriteJSON(w, http.StatusCreated, day)
	})
	srv.Handle(http.MethodPost, "/private-routines/days/{id}/blocks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		day := f.routine.DayByID(apitest.Vars(r)["id"])
		if day == nil {
			apitest.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "no day"})
			return
		}
		if f.failCreateIn[day.WeekDay] {
			apitest.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		var in models.BlockInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b := models.RoutineBlock{
			ID:           f.id("block-"),
			RoutineDayID: day.ID,
			WeekDay:      day.WeekDay,
			Title:        in.Title,
			Description:  in.Description,
			Color:        in.Color,
			Order:        len(day.Blocks),
			Status:       models.StatusNull,
		}
		if in.Order != nil {
			b.Order = *in.Order
		}
		day.Blocks = append(day.Blocks, b)
		apitest.WriteJSON(w, http.StatusCreated, b)
	})
	srv.Handle(http.MethodPatch, "/private-routines/blocks/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		day, i := f.routine.FindBlock(apitest.Vars(r)["id"])
		if day == nil {
			apitest.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "no block"})
			return
		}
		var in models.BlockInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		day.Blocks[i].Title = in.Title
		day.Blocks[i].Description = in.Description
		day.Blocks[i].Color = in.Color
		apitest.WriteJSON(w, http.StatusOK, day.Blocks[i])
	})
	srv.Handle(http.MethodDelete, "/private-routines/blocks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.onDelete != nil {
			f.onDelete(apitest.Vars(r)["id"])
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failDelete {
			apitest.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		day, i := f.routine.FindBlock(apitest.Vars(r)["id"])
		if day == nil {
			apitest.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "no block"})
			return
		}
		day.Blocks = append(day.Blocks[:i], day.Blocks[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	})
}

func block(id, dayID string, wd models.WeekDay, title string, order int, status models.BlockStatus) models.RoutineBlock {
	return models.RoutineBlock{ID: id, RoutineDayID: dayID, WeekDay: wd, Title: title, Order: order, Status: status}
}

// newFakeRoutine returns Monday [A,B,C] and Tuesday [Z]; today is Monday.
func newFakeRoutine() *fakeRoutine {
	return &fakeRoutine{
		today:  models.Monday,
		nextID: 100,
		routine: models.Routine{
			ID: "r1",
			Days: []models.RoutineDay{
				{ID: "mon", RoutineID: "r1", WeekDay: models.Monday, Blocks: []models.RoutineBlock{
					block("a", "mon", models.Monday, "A", 0, models.StatusNull),
					block("b", "mon", models.Monday, "B", 1, models.StatusVisualized),
					block("c", "mon", models.Monday, "C", 2, models.StatusDone),
				}},
				{ID: "tue", RoutineID: "r1", WeekDay: models.Tuesday, Blocks: []models.RoutineBlock{
					block("z", "tue", models.Tuesday, "Z", 0, models.StatusNull),
				}},
			},
		},
		failCreateIn: map[models.WeekDay]bool{},
	}
}

type fixture struct {
	srv   *apitest.Server
	fake  *fakeRoutine
	svc   *Service
	store *cache.Store
	rec   *notify.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer(t)
	fake := newFakeRoutine()
	fake.register(srv)

	store, err := cache.New(cache.Options{TTL: time.Hour})
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return &fixture{
		srv:   srv,
		fake:  fake,
		svc:   New(srv.Client(t), optimistic.NewRunner(store, rec), rec),
		store: store,
		rec:   rec,
	}
}

func titles(blocks []models.RoutineBlock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Title
	}
	return out
}

func orders(blocks []models.RoutineBlock) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Order
	}
	return out
}
