// internal/workers/picture_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// maxPictureSize bounds how much of a picture URL the worker will read.
const maxPictureSize = 10 << 20 // 10 MiB

// PictureProcessor downloads item pictures into the image store and
// removes released ones.
type PictureProcessor struct {
	repo   ports.CatalogRepository
	images ports.ImageStore
	http   *http.Client
	logger *slog.Logger
}

// NewPictureProcessor creates a picture processor.
func NewPictureProcessor(repo ports.CatalogRepository, images ports.ImageStore,
	timeout time.Duration, logger *slog.Logger) *PictureProcessor {
	return &PictureProcessor{
		repo:   repo,
		images: images,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("processor", "picture")),
	}
}

// HandleDownload fetches the picture URL, stores the bytes, and flips the
// item's pending marker to the stored filename. A download that cannot
// succeed leaves the item at NA rather than pending forever.
func (p *PictureProcessor) HandleDownload(ctx context.Context, t *asynq.Task) error {
	var payload PictureDownloadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "downloading picture",
		slog.String("category_id", payload.CategoryID),
		slog.String("item", payload.ItemName),
		slog.String("url", payload.PictureURL))

	data, contentType, err := p.fetch(ctx, payload.PictureURL)
	if err != nil {
		retries, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if retries >= maxRetry {
			// Out of retries: clear the pending marker.
			p.giveUp(ctx, payload)
			return fmt.Errorf("giving up on picture: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to fetch picture: %w", err)
	}

	filename := uuid.New().String() + extensionFor(contentType)

	if _, err := p.images.Upload(ctx, filename, bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("failed to store picture: %w", err)
	}

	if err := p.repo.SetItemPicture(ctx, payload.CategoryID, payload.ItemName, filename); err != nil {
		// The item may have been claimed while we downloaded; the stored
		// object is orphaned and swept up by the stale cleanup.
		p.logger.WarnContext(ctx, "item gone before picture landed",
			slog.String("category_id", payload.CategoryID),
			slog.String("item", payload.ItemName),
			slog.String("error", err.Error()))
		if delErr := p.images.Delete(ctx, filename); delErr != nil {
			p.logger.WarnContext(ctx, "failed to remove orphaned picture",
				slog.String("picture", filename),
				slog.String("error", delErr.Error()))
		}
		return nil
	}

	p.logger.InfoContext(ctx, "picture stored",
		slog.String("category_id", payload.CategoryID),
		slog.String("item", payload.ItemName),
		slog.String("picture", filename))

	return nil
}

// HandleDelete removes a released picture from the image store.
func (p *PictureProcessor) HandleDelete(ctx context.Context, t *asynq.Task) error {
	var payload PictureDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	exists, err := p.images.Exists(ctx, payload.Picture)
	if err != nil {
		return fmt.Errorf("failed to check picture: %w", err)
	}
	if !exists {
		return nil
	}

	if err := p.images.Delete(ctx, payload.Picture); err != nil {
		return fmt.Errorf("failed to delete picture: %w", err)
	}

	p.logger.InfoContext(ctx, "picture deleted", slog.String("picture", payload.Picture))
	return nil
}

func (p *PictureProcessor) fetch(ctx context.Context, pictureURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("picture URL returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPictureSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read picture: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("picture URL returned an empty body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// giveUp clears a pending marker back to NA after the final retry.
func (p *PictureProcessor) giveUp(ctx context.Context, payload PictureDownloadPayload) {
	if err := p.repo.SetItemPicture(ctx, payload.CategoryID, payload.ItemName, domain.NA); err != nil {
		p.logger.WarnContext(ctx, "failed to clear pending picture",
			slog.String("category_id", payload.CategoryID),
			slog.String("item", payload.ItemName),
			slog.String("error", err.Error()))
	}
}

// extensionFor maps a content type to a file extension for the stored key.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
