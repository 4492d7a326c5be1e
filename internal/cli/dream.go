package cli

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/validation"
)

type DreamCmd struct {
	List      DreamListCmd      `cmd:"" help:"List dreams." default:"1"`
	Show      DreamShowCmd      `cmd:"" help:"Show one dream."`
	Create    DreamCreateCmd    `cmd:"" help:"Create a dream."`
	Edit      DreamEditCmd      `cmd:"" help:"Edit a dream."`
	Visualize DreamVisualizeCmd `cmd:"" help:"Record today's visualization."`
	Archive   DreamArchiveCmd   `cmd:"" help:"Archive a dream."`
	Delete    DreamDeleteCmd    `cmd:"" help:"Delete a dream and its images."`
}

type DreamListCmd struct {
	Archived bool `help:"Show archived dreams instead."`
	Refresh  bool `help:"Bypass the cache."`
}

func (c *DreamListCmd) Run(ctx *Context) error {
	list, err := ctx.Dreams.List(ctx.Ctx, c.Archived, c.Refresh)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.println("No hay sueños")
		return nil
	}
	for _, d := range list {
		ctx.println(formatDream(d))
	}
	return nil
}

type DreamShowCmd struct {
	ID      string `arg:"" help:"Dream id."`
	Refresh bool   `help:"Bypass the cache."`
}

func (c *DreamShowCmd) Run(ctx *Context) error {
	d, err := ctx.Dreams.Get(ctx.Ctx, c.ID, c.Refresh)
	if err != nil {
		return err
	}
	ctx.println(formatDream(d))
	if d.Text != "" {
		ctx.println(indent(d.Text, "    "))
	}
	ctx.printf("Visualizaciones hoy: %d\n", d.TodayVisualizations)
	return nil
}

type DreamCreateCmd struct {
	Title string `help:"Dream title."`
	Text  string `help:"Longer description."`
}

func (c *DreamCreateCmd) Run(ctx *Context) error {
	if err := ask(textInput("Título", &c.Title, validation.Title)); err != nil {
		return err
	}
	d, err := ctx.Dreams.Create(ctx.Ctx, validation.DreamForm{Title: c.Title, Text: c.Text})
	if err != nil {
		return err
	}
	ctx.printf("Sueño creado: %s\n", d.ID)
	return nil
}

type DreamEditCmd struct {
	ID    string  `arg:"" help:"Dream id."`
	Title *string `help:"New title."`
	Text  *string `help:"New description."`
}

func (c *DreamEditCmd) Run(ctx *Context) error {
	d, err := ctx.Dreams.Get(ctx.Ctx, c.ID, false)
	if err != nil {
		return err
	}
	form := validation.DreamForm{Title: d.Title, Text: d.Text}
	if c.Title != nil {
		form.Title = *c.Title
	}
	if c.Text != nil {
		form.Text = *c.Text
	}
	updated, err := ctx.Dreams.Update(ctx.Ctx, c.ID, form)
	if err != nil {
		return err
	}
	ctx.println(formatDream(updated))
	return nil
}

type DreamVisualizeCmd struct {
	ID string `arg:"" help:"Dream id."`
}

func (c *DreamVisualizeCmd) Run(ctx *Context) error {
	_, err := ctx.Dreams.Visualize(ctx.Ctx, c.ID)
	if errors.Is(err, optimistic.ErrNoop) {
		ctx.println(constants.MsgAlreadyVisualized)
		return nil
	}
	return err
}

type DreamArchiveCmd struct {
	ID string `arg:"" help:"Dream id."`
}

func (c *DreamArchiveCmd) Run(ctx *Context) error {
	d, err := ctx.Dreams.Archive(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.printf("Sueño archivado: %s\n", d.Title)
	return nil
}

type DreamDeleteCmd struct {
	ID  string `arg:"" help:"Dream id."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DreamDeleteCmd) Run(ctx *Context) error {
	if !c.Yes {
		confirmed := false
		err := promptFunc(huh.NewConfirm().
			Title("¿Eliminar el sueño y sus imágenes?").
			Affirmative("Eliminar").
			Negative("Cancelar").
			Value(&confirmed))
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}
	if err := ctx.Dreams.Delete(ctx.Ctx, c.ID); err != nil {
		return err
	}
	ctx.println("Sueño eliminado")
	return nil
}
