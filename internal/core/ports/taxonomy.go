// internal/core/ports/taxonomy.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// TaxonomyResolver looks an animal name up in the external data source.
// A name with no exact (case-insensitive) match resolves to (nil, nil).
// Implementations sit behind this interface so store tests never touch the
// network.
type TaxonomyResolver interface {
	Resolve(ctx context.Context, name string) (*domain.Taxonomy, error)
}

// ImageStore persists downloaded item pictures.
type ImageStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}
