// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pawmart/petorder-be/internal/core/ports"
)

const (
	TypePictureDownload = "picture:download"
	TypePictureDelete   = "picture:delete"
	TypeResetStale      = "pictures:reset_stale"
)

// PictureDownloadPayload identifies the item whose picture should be
// fetched and the URL to fetch it from.
type PictureDownloadPayload struct {
	CategoryID string `json:"category_id"`
	ItemName   string `json:"item_name"`
	PictureURL string `json:"picture_url"`
}

// PictureDeletePayload names a stored picture to remove.
type PictureDeletePayload struct {
	Picture string `json:"picture"`
}

// Queue enqueues catalog background tasks through asynq.
type Queue struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.TaskQueue = (*Queue)(nil)

// NewQueue wraps an asynq client.
func NewQueue(client *asynq.Client, logger *slog.Logger) *Queue {
	return &Queue{
		client: client,
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// EnqueuePictureDownload queues a picture fetch for an item.
func (q *Queue) EnqueuePictureDownload(ctx context.Context, categoryID, itemName, pictureURL string) error {
	b, err := json.Marshal(PictureDownloadPayload{
		CategoryID: categoryID,
		ItemName:   itemName,
		PictureURL: pictureURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypePictureDownload, b)
	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(3))
	if err != nil {
		return fmt.Errorf("failed to enqueue picture download: %w", err)
	}

	q.logger.DebugContext(ctx, "enqueued picture download",
		slog.String("task_id", info.ID),
		slog.String("category_id", categoryID),
		slog.String("item", itemName))
	return nil
}

// EnqueuePictureDelete queues removal of a stored picture.
func (q *Queue) EnqueuePictureDelete(ctx context.Context, picture string) error {
	b, err := json.Marshal(PictureDeletePayload{Picture: picture})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypePictureDelete, b)
	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue picture delete: %w", err)
	}
	return nil
}
