package ai

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
)

// ImageFetcher downloads an image for providers that need inline bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, mimeType string, err error)
}

type HTTPImageFetcher struct {
	client *client.Client
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{client: client.New()}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := f.client.Get(url, client.Config{Ctx: ctx})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Close()

	if resp.StatusCode() != fiber.StatusOK {
		return nil, "", fmt.Errorf("image download returned status %d", resp.StatusCode())
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.Header("Content-Type"), nil
}
