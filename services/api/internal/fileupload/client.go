// Package fileupload is the client of the hosted file service that stores
// custom and restored thumbnails.
package fileupload

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/video-platform/internal/platform/httpclient"
)

// File is a stored file. Key identifies it for deletion.
type File struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL, apiKey string, cfg httpclient.Config, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{httpclient.WithHeader("X-Uploadthing-Api-Key", apiKey)}, opts...)
	return &Client{http: httpclient.New("file-upload", baseURL, cfg, opts...)}
}

type uploadFromURLResponse struct {
	Data []struct {
		File
		Error string `json:"error,omitempty"`
	} `json:"data"`
}

// UploadFromURL copies the file at src into the file service.
func (c *Client) UploadFromURL(ctx context.Context, src string) (File, error) {
	body := map[string][]string{"urls": {src}}
	out, err := httpclient.Do[uploadFromURLResponse](ctx, c.http, http.MethodPost, "/v6/uploadFilesFromUrl", body)
	if err != nil {
		return File{}, err
	}
	if len(out.Data) == 0 {
		return File{}, errors.New("file-upload: empty response")
	}
	if out.Data[0].Error != "" {
		return File{}, errors.New("file-upload: " + out.Data[0].Error)
	}
	return out.Data[0].File, nil
}

type deleteResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}

// DeleteFiles removes files by key. It reports how many were deleted.
func (c *Client) DeleteFiles(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	out, err := httpclient.Do[deleteResponse](ctx, c.http, http.MethodPost, "/v6/deleteFiles", map[string][]string{"fileKeys": keys})
	if err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}
