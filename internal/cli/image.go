package cli

type ImageCmd struct {
	List   ImageListCmd   `cmd:"" help:"List a dream's images."`
	Upload ImageUploadCmd `cmd:"" help:"Attach an image to a dream."`
	Delete ImageDeleteCmd `cmd:"" help:"Remove an image."`
	URL    ImageURLCmd    `cmd:"" name:"url" help:"Print a time-limited link to an image."`
}

type ImageListCmd struct {
	DreamID string `arg:"" name:"dream-id" help:"Dream id."`
	Refresh bool   `help:"Bypass the cache."`
}

func (c *ImageListCmd) Run(ctx *Context) error {
	images, err := ctx.Dreams.Images(ctx.Ctx, c.DreamID, c.Refresh)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		ctx.println("Sin imágenes")
		return nil
	}
	for _, img := range images {
		ctx.printf("%s  %-30s %s %d KB\n", img.ID, img.FileName, img.MimeType, img.FileSize/1024)
	}
	return nil
}

type ImageUploadCmd struct {
	DreamID string `arg:"" name:"dream-id" help:"Dream id."`
	Path    string `arg:"" type:"existingfile" help:"Image file (JPEG, PNG, WEBP or HEIC, up to 10 MB)."`
}

func (c *ImageUploadCmd) Run(ctx *Context) error {
	img, err := ctx.Dreams.UploadImage(ctx.Ctx, c.DreamID, c.Path)
	if err != nil {
		return err
	}
	ctx.printf("Imagen subida: %s\n", img.ID)
	return nil
}

type ImageDeleteCmd struct {
	DreamID string `arg:"" name:"dream-id" help:"Dream id."`
	ImageID string `arg:"" name:"image-id" help:"Image id."`
}

func (c *ImageDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Dreams.DeleteImage(ctx.Ctx, c.DreamID, c.ImageID); err != nil {
		return err
	}
	ctx.println("Imagen eliminada")
	return nil
}

type ImageURLCmd struct {
	ImageID string `arg:"" name:"image-id" help:"Image id."`
}

func (c *ImageURLCmd) Run(ctx *Context) error {
	url, err := ctx.Dreams.SignedURL(ctx.Ctx, c.ImageID)
	if err != nil {
		return err
	}
	ctx.println(url)
	return nil
}
