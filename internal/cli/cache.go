package cli

import "time"

type CacheCmd struct {
	List  CacheListCmd  `cmd:"" help:"List cached queries." default:"1"`
	Clear CacheClearCmd `cmd:"" help:"Drop every cached query."`
}

type CacheListCmd struct{}

func (c *CacheListCmd) Run(ctx *Context) error {
	keys := ctx.Cache.Keys()
	if len(keys) == 0 {
		ctx.println("Cache is empty")
		return nil
	}
	now := ctx.Cache.Now()
	for _, k := range keys {
		fetched, _ := ctx.Cache.FetchedAt(k)
		ctx.printf("%-40s %s ago\n", k, now.Sub(fetched).Round(time.Second))
	}
	return nil
}

type CacheClearCmd struct{}

func (c *CacheClearCmd) Run(ctx *Context) error {
	ctx.Cache.Clear()
	ctx.println("Cache cleared")
	return nil
}
