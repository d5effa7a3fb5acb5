package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/mr1hm/histotrails/internal/models"
)

type MediaUpload struct {
	EventID     int
	MediaType   models.MediaType
	Description string
	FileName    string
	Content     io.Reader
}

// UploadMedia posts a multipart upload. The returned media is nil when the
// API answers without the stored record.
func (c *Client) UploadMedia(ctx context.Context, u MediaUpload) (*models.Media, error) {
	body, err := multipartPayload(u)
	if err != nil {
		return nil, err
	}

	var raw rawBody
	if err := c.do(ctx, http.MethodPost, "/api/media", "api/media", body, &raw); err != nil {
		return nil, err
	}
	return decodeMedia(raw), nil
}

func multipartPayload(u MediaUpload) (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileName := u.FileName
	if fileName == "" {
		fileName = "upload"
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return nil, fmt.Errorf("error copying %s into form: %w", fileName, err)
	}

	mediaType := u.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeImage
	}
	fields := [][2]string{
		{"mediaType", string(mediaType)},
		{"eventId", strconv.Itoa(u.EventID)},
		{"description", u.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("error writing form field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart writer: %w", err)
	}

	return &payload{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

func decodeMedia(raw []byte) *models.Media {
	var envelope struct {
		models.Media
		Data *models.Media `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	if envelope.Data != nil && envelope.Data.URL != "" {
		return envelope.Data
	}
	if envelope.Media.URL == "" {
		return nil
	}
	m := envelope.Media
	return &m
}

func (c *Client) ListEventMedia(ctx context.Context, eventID int) ([]models.Media, error) {
	var media []models.Media
	if err := c.do(ctx, http.MethodGet, "/api/media/event/{id}", "api/media/event/"+strconv.Itoa(eventID), nil, &media); err != nil {
		return nil, err
	}
	return media, nil
}

func (c *Client) DeleteMedia(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/media/{id}", "api/media/"+strconv.Itoa(id), nil, nil)
}
