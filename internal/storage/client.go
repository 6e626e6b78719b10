package storage

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client talks to the hosted object-storage HTTP API (Supabase-style bucket
// endpoints): objects are written under a bucket and served from a public URL.
type Client struct {
	baseURL string
	bucket  string

	http *resty.Client
}

func NewClient(baseURL, bucket, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey)
	return &Client{baseURL: baseURL, bucket: bucket, http: http}
}

func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", c.bucket, path))
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("storage upload: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
