package routine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
)

func TestReplaceBlocks(t *testing.T) {
	source := models.RoutineDay{ID: "mon", WeekDay: models.Monday, Blocks: []models.RoutineBlock{
		block("b", "mon", models.Monday, "B", 1, models.StatusDone),
		block("a", "mon", models.Monday, "A", 0, models.StatusVisualized),
	}}
	target := models.RoutineDay{ID: "tue", WeekDay: models.Tuesday, Blocks: []models.RoutineBlock{
		block("z", "tue", models.Tuesday, "Z", 0, models.StatusNull),
	}}

	got := ReplaceBlocks(source, target)
	assert.Equal(t, "tue", got.ID)
	assert.Equal(t, []string{"A", "B"}, titles(got.Blocks))
	assert.Equal(t, []int{0, 1}, orders(got.Blocks))
	for _, b := range got.Blocks {
		assert.Equal(t, models.StatusNull, b.Status)
		assert.Equal(t, models.Tuesday, b.WeekDay)
		assert.Equal(t, "tue", b.RoutineDayID)
		assert.True(t, strings.HasPrefix(b.ID, placeholderPrefix), "id %s", b.ID)
	}
	assert.Equal(t, []string{"B", "A"}, titles(source.Blocks), "source is not modified")
}

func TestReplaceOnServerKeepsSourceOrder(t *testing.T) {
	f := setup(t)
	source := models.RoutineDay{ID: "mon", WeekDay: models.Monday, Blocks: []models.RoutineBlock{
		block("b", "mon", models.Monday, "B", 1, models.StatusDone),
		block("a", "mon", models.Monday, "A", 0, models.StatusVisualized),
	}}
	before := f.fake.snapshot()
	existing := before.Day(models.Tuesday)

	require.NoError(t, f.svc.replaceOnServer(context.Background(), source, existing, models.Tuesday))
	assert.Equal(t, []string{"B", "A"}, titles(source.Blocks), "caller's slice keeps its order")
	after := f.fake.snapshot()
	assert.Equal(t, []string{"A", "B"}, titles(after.Day(models.Tuesday).Blocks))
}

func TestSummaryMessage(t *testing.T) {
	tests := []struct {
		name      string
		summary   Summary
		wantMsg   string
		wantLevel notify.Level
	}{
		{
			name:      "all",
			summary:   Summary{Succeeded: 3, Total: 3},
			wantMsg:   fmt.Sprintf(constants.MsgDuplicateAllOK, 3, 3),
			wantLevel: notify.LevelSuccess,
		},
		{
			name:      "partial",
			summary:   Summary{Succeeded: 2, Total: 3},
			wantMsg:   fmt.Sprintf(constants.MsgDuplicatePartial, 2, 3),
			wantLevel: notify.LevelInfo,
		},
		{
			name:      "none",
			summary:   Summary{Succeeded: 0, Total: 2},
			wantMsg:   fmt.Sprintf(constants.MsgDuplicateAllFailed, 0, 2),
			wantLevel: notify.LevelError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.summary.Message())
			assert.Equal(t, tt.wantLevel, tt.summary.level())
		})
	}
	assert.Contains(t, Summary{Succeeded: 2, Total: 3}.Message(), "2 de 3")
}

func TestDuplicateReplacesTarget(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	summary, err := f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Tuesday})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Total)
	assert.Empty(t, summary.Failed())

	assert.Len(t, f.srv.Find(http.MethodDelete, "/private-routines/blocks/z"), 1)
	tue := cachedRoutine(t, f).Day(models.Tuesday)
	require.NotNil(t, tue)
	assert.Equal(t, []string{"A", "B", "C"}, titles(tue.Blocks), "Z is gone")
	assert.Equal(t, []int{0, 1, 2}, orders(tue.Blocks))
	for _, b := range tue.Blocks {
		assert.Equal(t, models.StatusNull, b.Status)
	}

	mon := cachedRoutine(t, f).Day(models.Monday)
	assert.Equal(t, []string{"A", "B", "C"}, titles(mon.Blocks), "source untouched")

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.LevelSuccess, msgs[0].Level)
	assert.Equal(t, summary.Message(), msgs[0].Text)
}

func TestDuplicatePartialFailure(t *testing.T) {
	f := setup(t)
	f.fake.failCreateIn[models.Thursday] = true
	ctx := context.Background()

	summary, err := f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{
		models.Tuesday, models.Wednesday, models.Thursday, models.Monday, models.Tuesday,
	})
	require.NoError(t, err, "partial success is not an error")
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 3, summary.Total, "duplicates and the source are dropped")
	assert.Equal(t, []models.WeekDay{models.Thursday}, summary.Failed())
	assert.Contains(t, summary.Message(), "2 de 3")

	r := cachedRoutine(t, f)
	assert.Equal(t, []string{"A", "B", "C"}, titles(r.Day(models.Tuesday).Blocks))
	assert.Equal(t, []string{"A", "B", "C"}, titles(r.Day(models.Wednesday).Blocks))
	if thu := r.Day(models.Thursday); thu != nil {
		assert.Empty(t, thu.Blocks, "failed target keeps no optimistic blocks")
	}

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1, "one summary, no per-target toasts")
	assert.Equal(t, notify.LevelInfo, msgs[0].Level)
	assert.Equal(t, fmt.Sprintf(constants.MsgDuplicatePartial, 2, 3), msgs[0].Text)
}

func TestDuplicateAllFail(t *testing.T) {
	f := setup(t)
	f.fake.failCreateIn[models.Tuesday] = true
	ctx := context.Background()

	summary, err := f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Tuesday})
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf(constants.MsgDuplicateAllFailed, 0, 1), herrors.UserMessage(err, ""))
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, []string{summary.Message()}, f.rec.Errors())
}

func TestDuplicateRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Duplicate(ctx, models.Sunday, []models.WeekDay{models.Monday})
	assert.ErrorIs(t, err, ErrDayNotFound)

	_, err = f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Monday})
	assert.Error(t, err)
	assert.Empty(t, f.srv.Find(http.MethodPost, "/private-routines/days"))
}

func TestDuplicatePatchesTodayProjection(t *testing.T) {
	f := setup(t)
	f.fake.today = models.Tuesday
	ctx := context.Background()
	today, err := f.svc.Today(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{"Z"}, titles(today.Blocks))

	var during []string
	f.fake.onDelete = func(string) {
		d, ok, err := cache.Load[models.RoutineDay](f.store, cache.TodayRoutineKey())
		if err == nil && ok {
			during = titles(d.Blocks)
		}
	}

	_, err = f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Tuesday})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, during, "today shows the copy before the server answers")

	today, err = f.svc.Today(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(today.Blocks))
}

func TestDuplicateLeavesOtherTodayAlone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Today(ctx, false)
	require.NoError(t, err)

	var during []string
	f.fake.onDelete = func(string) {
		d, ok, err := cache.Load[models.RoutineDay](f.store, cache.TodayRoutineKey())
		if err == nil && ok {
			during = titles(d.Blocks)
		}
	}

	_, err = f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Tuesday})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, during, "Monday is today and keeps its own blocks")
}

func TestDuplicateClearsBlocksAddedElsewhere(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Routine(ctx, false)
	require.NoError(t, err)

	// Another client adds a block after the routine was cached.
	f.fake.mu.Lock()
	tue := f.fake.routine.Day(models.Tuesday)
	tue.Blocks = append(tue.Blocks, block("y", "tue", models.Tuesday, "Y", 1, models.StatusNull))
	f.fake.mu.Unlock()

	_, err = f.svc.Duplicate(ctx, models.Monday, []models.WeekDay{models.Tuesday})
	require.NoError(t, err)
	assert.Len(t, f.srv.Find(http.MethodDelete, "/private-routines/blocks/y"), 1)
	snap := f.fake.snapshot()
	assert.Equal(t, []string{"A", "B", "C"}, titles(snap.Day(models.Tuesday).Blocks))
}
