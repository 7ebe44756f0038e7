// internal/core/ports/tasks.go
package ports

import "context"

// TaskQueue enqueues background work for the store's worker process.
// Enqueueing is fire-and-forget from the caller's perspective; the worker
// owns retries.
type TaskQueue interface {
	// EnqueuePictureDownload queues fetching an item's picture from the
	// given URL and storing it. The item keeps its pending marker until
	// the worker finishes.
	EnqueuePictureDownload(ctx context.Context, categoryID, itemName, pictureURL string) error

	// EnqueuePictureDelete queues removal of a stored picture after its
	// item is gone.
	EnqueuePictureDelete(ctx context.Context, picture string) error
}
