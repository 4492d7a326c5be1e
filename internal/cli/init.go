package cli

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if ctx.Store == nil {
		ctx.println("No persistent cache configured")
		return nil
	}
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized hekate cache at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
