package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/julianstephens/hekate/internal/models"
)

// ListDreams returns the archived or unarchived dreams.
func (c *Client) ListDreams(ctx context.Context, archived bool) ([]models.Dream, error) {
	var out []models.Dream
	q := url.Values{"archived": {strconv.FormatBool(archived)}}
	err := c.do(ctx, request{method: http.MethodGet, path: "/dreams", query: q}, &out)
	return out, err
}

func (c *Client) GetDream(ctx context.Context, id string) (models.Dream, error) {
	var out models.Dream
	err := c.do(ctx, request{method: http.MethodGet, path: "/dreams/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) CreateDream(ctx context.Context, in models.DreamInput) (models.Dream, error) {
	var out models.Dream
	err := c.do(ctx, request{method: http.MethodPost, path: "/dreams", body: in}, &out)
	return out, err
}

func (c *Client) UpdateDream(ctx context.Context, id string, in models.DreamInput) (models.Dream, error) {
	var out models.Dream
	err := c.do(ctx, request{method: http.MethodPatch, path: "/dreams/" + url.PathEscape(id), body: in}, &out)
	return out, err
}

// VisualizeDream records today's visualization.
func (c *Client) VisualizeDream(ctx context.Context, id string) (models.Visualization, error) {
	var out models.Visualization
	err := c.do(ctx, request{method: http.MethodPost, path: "/dreams/" + url.PathEscape(id) + "/visualize"}, &out)
	return out, err
}

func (c *Client) ArchiveDream(ctx context.Context, id string) (models.Dream, error) {
	var out models.Dream
	err := c.do(ctx, request{method: http.MethodPost, path: "/dreams/" + url.PathEscape(id) + "/archive"}, &out)
	return out, err
}

func (c *Client) DeleteDream(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/dreams/" + url.PathEscape(id)}, nil)
}

// ListDreamImages returns the images of a dream with fresh signed URLs.
func (c *Client) ListDreamImages(ctx context.Context, dreamID string) ([]models.DreamImage, error) {
	var out []models.DreamImage
	err := c.do(ctx, request{method: http.MethodGet, path: "/dream-images/dream/" + url.PathEscape(dreamID)}, &out)
	return out, err
}

// UploadDreamImage sends the image as multipart form data in field "file".
func (c *Client) UploadDreamImage(ctx context.Context, dreamID, fileName, mimeType string, content io.Reader) (models.DreamImage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return models.DreamImage{}, fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return models.DreamImage{}, fmt.Errorf("copying image: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.DreamImage{}, fmt.Errorf("closing multipart body: %w", err)
	}

	var out models.DreamImage
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/dream-images/dream/" + url.PathEscape(dreamID),
		rawBody:     &buf,
		contentType: w.FormDataContentType(),
	}, &out)
	return out, err
}

// SignedImageURL issues a new time-limited URL for an image.
func (c *Client) SignedImageURL(ctx context.Context, imageID string) (string, error) {
	var out struct {
		SignedURL string `json:"signedUrl"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/dream-images/" + url.PathEscape(imageID) + "/signed-url"}, &out)
	return out.SignedURL, err
}

func (c *Client) DeleteDreamImage(ctx context.Context, imageID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/dream-images/" + url.PathEscape(imageID)}, nil)
}
