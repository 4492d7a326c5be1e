package cli

type ReadCmd struct {
	Refresh bool `help:"Bypass the cache."`
}

func (c *ReadCmd) Run(ctx *Context) error {
	r, err := ctx.Reads.Today(ctx.Ctx, c.Refresh)
	if err != nil {
		return err
	}
	ctx.println(r.Title)
	if r.Author != "" {
		ctx.printf("— %s\n", r.Author)
	}
	ctx.println()
	ctx.println(r.Content)
	return nil
}
