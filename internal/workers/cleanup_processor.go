// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pawmart/petorder-be/internal/adapters/db"
)

// CleanupProcessor handles periodic catalog housekeeping.
type CleanupProcessor struct {
	db     *db.Database
	logger *slog.Logger
}

// NewCleanupProcessor creates a cleanup processor.
func NewCleanupProcessor(db *db.Database, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     db,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// ResetStalePictures clears pictures stuck at the pending marker. A pending
// picture older than one scheduler period means its download task was lost
// or exhausted its retries without reporting back.
func (p *CleanupProcessor) ResetStalePictures(ctx context.Context, t *asynq.Task) error {
	query := `UPDATE items SET picture = 'NA' WHERE picture = 'pending'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to reset stale pictures: %w", err)
	}

	if n := result.RowsAffected(); n > 0 {
		p.logger.InfoContext(ctx, "reset stale pending pictures", slog.Int64("items", n))
	}
	return nil
}
