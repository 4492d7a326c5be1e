package dreams

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
)

// AllowedImageTypes are the mime types the API stores.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic"}

// HEIC is not sniffable by content, so it is recognised by extension.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heic",
}

// DetectImageType returns the mime type of an image from its first bytes,
// falling back to the file extension. It fails for anything not in
// AllowedImageTypes or larger than the upload limit.
func DetectImageType(name string, size int64, head []byte) (string, error) {
	if size > constants.MaxImageBytes {
		return "", &herrors.UserError{
			Message: constants.MsgImageTooLarge,
			Cause:   fmt.Errorf("%s is %d bytes, limit is %d", name, size, constants.MaxImageBytes),
		}
	}

	mimeType := http.DetectContentType(head)
	if !allowed(mimeType) {
		mimeType = extensionTypes[strings.ToLower(filepath.Ext(name))]
	}
	if !allowed(mimeType) {
		return "", &herrors.UserError{
			Message: constants.MsgImageType,
			Cause:   fmt.Errorf("%s has unsupported type %q", name, http.DetectContentType(head)),
		}
	}
	return mimeType, nil
}

func allowed(mimeType string) bool {
	for _, t := range AllowedImageTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

func (s *Service) Images(ctx context.Context, dreamID string, refresh bool) ([]models.DreamImage, error) {
	key := cache.DreamImagesKey(dreamID)
	if !refresh {
		if images, ok, err := cache.Load[[]models.DreamImage](s.store, key); err == nil && ok {
			return images, nil
		}
	}

	images, err := s.api.ListDreamImages(ctx, dreamID)
	if err != nil {
		return nil, herrors.Wrap(err, constants.MsgImagesFetchFailed)
	}
	if err := cache.Put(s.store, key, images); err != nil {
		logger.Warn("Failed to cache dream images", "dream", dreamID, "error", err)
	}
	return images, nil
}

// UploadImage validates and uploads the file at path.
func (s *Service) UploadImage(ctx context.Context, dreamID, path string) (models.DreamImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.DreamImage{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.DreamImage{}, fmt.Errorf("reading image: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.DreamImage{}, fmt.Errorf("reading image: %w", err)
	}
	mimeType, err := DetectImageType(info.Name(), info.Size(), head[:n])
	if err != nil {
		return models.DreamImage{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return models.DreamImage{}, fmt.Errorf("reading image: %w", err)
	}

	img, err := s.api.UploadDreamImage(ctx, dreamID, info.Name(), mimeType, f)
	if err != nil {
		return models.DreamImage{}, herrors.Wrap(err, constants.MsgImageUploadFailed)
	}
	s.store.Invalidate(cache.DreamImagesKey(dreamID))
	return img, nil
}

// DeleteImage removes an image, dropping it from the cached gallery first.
func (s *Service) DeleteImage(ctx context.Context, dreamID, imageID string) error {
	key := cache.DreamImagesKey(dreamID)
	_, err := optimistic.Run(ctx, s.runner, optimistic.Mutation[struct{}]{
		Key:     "image/" + imageID,
		Queries: []cache.Key{key},
		Patch: func(store *cache.Store) error {
			_, err := cache.Update(store, key, func(images *[]models.DreamImage) error {
				out := make([]models.DreamImage, 0, len(*images))
				for _, img := range *images {
					if img.ID != imageID {
						out = append(out, img)
					}
				}
				*images = out
				return nil
			})
			return err
		},
		Request: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteDreamImage(ctx, imageID)
		},
		Reconcile:    []cache.Key{key},
		ErrorMessage: constants.MsgImageDeleteFailed,
	})
	return err
}

// SignedURL returns a time-limited URL for the image. It is never cached.
func (s *Service) SignedURL(ctx context.Context, imageID string) (string, error) {
	u, err := s.api.SignedImageURL(ctx, imageID)
	if err != nil {
		return "", herrors.Wrap(err, constants.MsgImagesFetchFailed)
	}
	return u, nil
}
