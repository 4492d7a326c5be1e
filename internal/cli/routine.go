package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/routine"
	"github.com/julianstephens/hekate/internal/validation"
)

type RoutineCmd struct {
	Show        RoutineShowCmd        `cmd:"" help:"Show the weekly routine." default:"1"`
	Today       RoutineTodayCmd       `cmd:"" help:"Show today's blocks."`
	Advance     RoutineAdvanceCmd     `cmd:"" help:"Move a block to its next status."`
	SetStatus   RoutineSetStatusCmd   `cmd:"" name:"set-status" help:"Set a block's status."`
	Reorder     RoutineReorderCmd     `cmd:"" help:"Move a block to another position in its day."`
	Duplicate   RoutineDuplicateCmd   `cmd:"" help:"Copy a day's blocks onto other days, replacing theirs."`
	AddBlock    RoutineAddBlockCmd    `cmd:"" name:"add-block" help:"Add a block to a weekday."`
	EditBlock   RoutineEditBlockCmd   `cmd:"" name:"edit-block" help:"Edit a block."`
	DeleteBlock RoutineDeleteBlockCmd `cmd:"" name:"delete-block" help:"Delete a block."`
}

type RoutineShowCmd struct {
	Refresh bool `help:"Bypass the cache."`
}

func (c *RoutineShowCmd) Run(ctx *Context) error {
	r, err := ctx.Routine.Routine(ctx.Ctx, c.Refresh)
	if err != nil {
		return err
	}
	for _, wd := range models.WeekDays() {
		day := r.Day(wd)
		if day == nil || len(day.Blocks) == 0 {
			continue
		}
		ctx.printf("%s (%s)\n", wd.Label(), day.ID)
		for _, b := range day.Blocks {
			ctx.printf("  %s  %s\n", formatBlock(b), b.ID)
		}
	}
	return nil
}

type RoutineTodayCmd struct {
	Refresh bool `help:"Bypass the cache."`
}

func (c *RoutineTodayCmd) Run(ctx *Context) error {
	day, err := ctx.Routine.Today(ctx.Ctx, c.Refresh)
	if err != nil {
		return err
	}
	ctx.printf("%s\n", day.WeekDay.Label())
	if len(day.Blocks) == 0 {
		ctx.println("  Sin bloques para hoy")
		return nil
	}
	for _, b := range day.Blocks {
		ctx.printf("  %s  %s\n", formatBlock(b), b.ID)
	}
	return nil
}

type RoutineAdvanceCmd struct {
	BlockID string `arg:"" name:"block-id" help:"Block id."`
}

func (c *RoutineAdvanceCmd) Run(ctx *Context) error {
	b, err := ctx.Routine.Advance(ctx.Ctx, c.BlockID)
	if errors.Is(err, optimistic.ErrNoop) {
		ctx.println(constants.MsgBlockAlreadyDone)
		return nil
	}
	if err != nil {
		return err
	}
	ctx.println(formatBlock(b))
	return nil
}

type RoutineSetStatusCmd struct {
	BlockID string `arg:"" name:"block-id" help:"Block id."`
	Status  string `arg:"" enum:"null,visualized,done,NULL,VISUALIZED,DONE" help:"null, visualized or done."`
	Force   bool   `help:"Allow moving backwards (e.g. DONE to NULL)."`
}

func (c *RoutineSetStatusCmd) Run(ctx *Context) error {
	status, err := models.ParseBlockStatus(c.Status)
	if err != nil {
		return err
	}
	b, err := ctx.Routine.SetStatus(ctx.Ctx, c.BlockID, status, c.Force)
	if errors.Is(err, optimistic.ErrNoop) {
		ctx.println(formatBlock(b))
		return nil
	}
	if errors.Is(err, models.ErrInvalidTransition) {
		return fmt.Errorf("%w (use --force to override)", err)
	}
	if err != nil {
		return err
	}
	ctx.println(formatBlock(b))
	return nil
}

type RoutineReorderCmd struct {
	Day  string `arg:"" help:"Weekday name or routine day id."`
	From int    `arg:"" help:"Current position (0-based)."`
	To   int    `arg:"" help:"New position (0-based)."`
}

func (c *RoutineReorderCmd) Run(ctx *Context) error {
	dayID, err := resolveDayID(ctx, c.Day)
	if err != nil {
		return err
	}
	blocks, err := ctx.Routine.Reorder(ctx.Ctx, dayID, c.From, c.To)
	if err != nil && !errors.Is(err, optimistic.ErrNoop) {
		return err
	}
	for _, b := range blocks {
		ctx.println(formatBlock(b))
	}
	return nil
}

// resolveDayID accepts a weekday name and maps it to the routine day's id.
func resolveDayID(ctx *Context, s string) (string, error) {
	wd, err := models.ParseWeekDay(s)
	if err != nil {
		return s, nil
	}
	r, err := ctx.Routine.Routine(ctx.Ctx, false)
	if err != nil {
		return "", err
	}
	day := r.Day(wd)
	if day == nil {
		return "", fmt.Errorf("%w: %s", routine.ErrDayNotFound, wd)
	}
	return day.ID, nil
}

type RoutineDuplicateCmd struct {
	Source string `arg:"" help:"Weekday to copy from."`
	To     string `arg:"" help:"Comma-separated weekdays to replace (e.g. tue,wed)."`
}

func (c *RoutineDuplicateCmd) Run(ctx *Context) error {
	source, err := models.ParseWeekDay(c.Source)
	if err != nil {
		return err
	}
	targets, err := ParseWeekDays(c.To)
	if err != nil {
		return err
	}
	summary, err := ctx.Routine.Duplicate(ctx.Ctx, source, targets)
	for _, r := range summary.Results {
		if r.Err != nil {
			ctx.printf("  ✗ %s\n", r.WeekDay.Label())
		} else {
			ctx.printf("  ✓ %s\n", r.WeekDay.Label())
		}
	}
	return err
}

type RoutineAddBlockCmd struct {
	Day         string `arg:"" help:"Weekday."`
	Title       string `help:"Block title."`
	Description string `help:"Optional description."`
	Color       string `help:"Color as #RRGGBB."`
}

func (c *RoutineAddBlockCmd) Run(ctx *Context) error {
	wd, err := models.ParseWeekDay(c.Day)
	if err != nil {
		return err
	}
	if err := ask(textInput("Título", &c.Title, validation.Title)); err != nil {
		return err
	}
	b, err := ctx.Routine.CreateBlock(ctx.Ctx, wd, validation.BlockForm{
		Title:       c.Title,
		Description: c.Description,
		Color:       c.Color,
	})
	if err != nil {
		return err
	}
	ctx.printf("Bloque creado: %s\n", b.ID)
	return nil
}

type RoutineEditBlockCmd struct {
	BlockID     string  `arg:"" name:"block-id" help:"Block id."`
	Title       *string `help:"New title."`
	Description *string `help:"New description."`
	Color       *string `help:"New color as #RRGGBB."`
}

func (c *RoutineEditBlockCmd) Run(ctx *Context) error {
	r, err := ctx.Routine.Routine(ctx.Ctx, false)
	if err != nil {
		return err
	}
	day, i := r.FindBlock(c.BlockID)
	if day == nil {
		return fmt.Errorf("%w: %s", routine.ErrBlockNotFound, c.BlockID)
	}
	b := day.Blocks[i]
	form := validation.BlockForm{Title: b.Title, Description: b.Description, Color: b.Color}
	if c.Title != nil {
		form.Title = *c.Title
	}
	if c.Description != nil {
		form.Description = *c.Description
	}
	if c.Color != nil {
		form.Color = *c.Color
	}
	updated, err := ctx.Routine.UpdateBlock(ctx.Ctx, c.BlockID, form)
	if err != nil {
		return err
	}
	ctx.println(formatBlock(updated))
	return nil
}

type RoutineDeleteBlockCmd struct {
	BlockID string `arg:"" name:"block-id" help:"Block id."`
}

func (c *RoutineDeleteBlockCmd) Run(ctx *Context) error {
	if err := ctx.Routine.DeleteBlock(ctx.Ctx, c.BlockID); err != nil {
		return err
	}
	ctx.println("Bloque eliminado")
	return nil
}
