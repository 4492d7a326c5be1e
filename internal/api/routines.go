package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/hekate/internal/models"
)

// GetRoutine returns the full weekly routine.
func (c *Client) GetRoutine(ctx context.Context) (models.Routine, error) {
	var out models.Routine
	err := c.do(ctx, request{method: http.MethodGet, path: "/private-routines"}, &out)
	return out, err
}

// GetTodayRoutine returns the day of the routine matching today's weekday.
func (c *Client) GetTodayRoutine(ctx context.Context) (models.RoutineDay, error) {
	var out models.RoutineDay
	err := c.do(ctx, request{method: http.MethodGet, path: "/private-routines/today"}, &out)
	return out, err
}

// CreateRoutineDay creates the (empty) day for a weekday.
func (c *Client) CreateRoutineDay(ctx context.Context, wd models.WeekDay) (models.RoutineDay, error) {
	var out models.RoutineDay
	body := map[string]models.WeekDay{"weekDay": wd}
	err := c.do(ctx, request{method: http.MethodPost, path: "/private-routines/days", body: body}, &out)
	return out, err
}

func (c *Client) CreateBlock(ctx context.Context, dayID string, in models.BlockInput) (models.RoutineBlock, error) {
	var out models.RoutineBlock
	err := c.do(ctx, request{method: http.MethodPost, path: "/private-routines/days/" + url.PathEscape(dayID) + "/blocks", body: in}, &out)
	return out, err
}

func (c *Client) UpdateBlock(ctx context.Context, blockID string, in models.BlockInput) (models.RoutineBlock, error) {
	var out models.RoutineBlock
	err := c.do(ctx, request{method: http.MethodPatch, path: "/private-routines/blocks/" + url.PathEscape(blockID), body: in}, &out)
	return out, err
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/private-routines/blocks/" + url.PathEscape(blockID)}, nil)
}

// SetBlockStatus sets any status directly; the server decides what it accepts.
func (c *Client) SetBlockStatus(ctx context.Context, blockID string, status models.BlockStatus) (models.RoutineBlock, error) {
	var out models.RoutineBlock
	body := map[string]models.BlockStatus{"status": status}
	err := c.do(ctx, request{method: http.MethodPut, path: "/private-routines/blocks/" + url.PathEscape(blockID) + "/status", body: body}, &out)
	return out, err
}

// ReorderBlocks submits the full ordered id list of a day.
func (c *Client) ReorderBlocks(ctx context.Context, dayID string, blockIDs []string) error {
	body := map[string][]string{"blockIds": blockIDs}
	return c.do(ctx, request{method: http.MethodPut, path: "/private-routines/days/" + url.PathEscape(dayID) + "/reorder", body: body}, nil)
}

// TodayRead returns the reading of the day.
func (c *Client) TodayRead(ctx context.Context) (models.DailyRead, error) {
	var out models.DailyRead
	err := c.do(ctx, request{method: http.MethodGet, path: "/daily-reads"}, &out)
	return out, err
}
