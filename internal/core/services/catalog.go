// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

// CatalogService implements the store's catalog logic on top of the
// repository, the taxonomy resolver, the image store, and the background
// task queue.
type CatalogService struct {
	repo     ports.CatalogRepository
	taxonomy ports.TaxonomyResolver
	images   ports.ImageStore
	queue    ports.TaskQueue
	logger   *slog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates the catalog service.
func NewCatalogService(repo ports.CatalogRepository, taxonomy ports.TaxonomyResolver,
	images ports.ImageStore, queue ports.TaskQueue, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		taxonomy: taxonomy,
		images:   images,
		queue:    queue,
		logger:   logger.With(slog.String("service", "catalog")),
	}
}

// CreateCategory registers a category, filling family, genus, attributes
// and lifespan from the taxonomy lookup. Names without an exact match get
// NA defaults rather than a rejection.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrMalformed)
	}

	existing, err := s.repo.FindCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
	}

	cat := &domain.Category{
		Name:       name,
		Family:     domain.NA,
		Genus:      domain.NA,
		Attributes: []string{},
		Items:      []string{},
	}

	tax, err := s.taxonomy.Resolve(ctx, name)
	if err != nil {
		// A failed lookup keeps the NA defaults; taxonomy is enrichment,
		// not a precondition.
		s.logger.WarnContext(ctx, "taxonomy lookup failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
	} else if tax != nil {
		cat.Family = tax.Family
		cat.Genus = tax.Genus
		cat.Attributes = tax.Attributes
		cat.Lifespan = tax.Lifespan
	}

	id, err := s.repo.NextCategoryID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign category id: %w", err)
	}
	cat.ID = id

	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.InfoContext(ctx, "created category",
		slog.String("id", cat.ID),
		slog.String("name", cat.Name),
		slog.String("family", cat.Family))

	return cat, nil
}

// GetCategory returns one category by its store-local id.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	cat, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return cat, nil
}

// ListCategories returns the categories matching the query. Filtering is
// in-memory; a store's catalog is small.
func (s *CatalogService) ListCategories(ctx context.Context, q domain.CategoryQuery) ([]domain.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	matched := make([]domain.Category, 0, len(cats))
	for i := range cats {
		if q.Matches(&cats[i]) {
			matched = append(matched, cats[i])
		}
	}
	return matched, nil
}

// DeleteCategory removes an empty category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	cat, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if cat == nil {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if len(cat.Items) > 0 {
		return fmt.Errorf("category %s still has %d items: %w", id, len(cat.Items), domain.ErrConflict)
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted category", slog.String("id", id))
	return nil
}

// CreateItem adds an item to a category. A picture URL is downloaded in
// the background; the item carries the pending marker until then.
func (s *CatalogService) CreateItem(ctx context.Context, categoryID string, item *domain.Item, pictureURL string) (*domain.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, categoryID, item.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check item name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("item %q already exists in category %s: %w",
			item.Name, categoryID, domain.ErrConflict)
	}

	if item.Birthdate == "" {
		item.Birthdate = domain.NA
	}
	item.Picture = domain.NA
	if pictureURL != "" {
		item.Picture = domain.PicturePending
	}

	if err := s.repo.CreateItem(ctx, categoryID, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	if pictureURL != "" {
		if err := s.queue.EnqueuePictureDownload(ctx, categoryID, item.Name, pictureURL); err != nil {
			// The item stays pending; a later update can retry the URL.
			s.logger.WarnContext(ctx, "failed to enqueue picture download",
				slog.String("category_id", categoryID),
				slog.String("item", item.Name),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "created item",
		slog.String("category_id", categoryID),
		slog.String("name", item.Name))

	return item, nil
}

// GetItem returns one item by name.
func (s *CatalogService) GetItem(ctx context.Context, categoryID, name string) (*domain.Item, error) {
	item, err := s.repo.FindItem(ctx, categoryID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %q in category %s: %w", name, categoryID, domain.ErrNotFound)
	}
	return item, nil
}

// ListItems returns the category's items matching the query.
func (s *CatalogService) ListItems(ctx context.Context, categoryID string, q domain.ItemQuery) ([]domain.Item, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	matched := make([]domain.Item, 0, len(items))
	for i := range items {
		if q.Matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	return matched, nil
}

// UpdateItem renames an item and/or replaces its picture. Renames keep the
// per-category uniqueness rule; a replaced picture releases the old one.
func (s *CatalogService) UpdateItem(ctx context.Context, categoryID, name string, update *domain.Item, pictureURL string) (*domain.Item, error) {
	current, err := s.GetItem(ctx, categoryID, name)
	if err != nil {
		return nil, err
	}

	if update.Name == "" {
		update.Name = current.Name
	}
	if update.Birthdate == "" {
		update.Birthdate = current.Birthdate
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	if !domain.EqualFold(update.Name, current.Name) {
		dup, err := s.repo.FindItem(ctx, categoryID, update.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check item name: %w", err)
		}
		if dup != nil {
			return nil, fmt.Errorf("item %q already exists in category %s: %w",
				update.Name, categoryID, domain.ErrConflict)
		}
	}

	update.Picture = current.Picture
	if pictureURL != "" {
		s.releasePicture(ctx, current.Picture)
		update.Picture = domain.PicturePending
	}

	if err := s.repo.UpdateItem(ctx, categoryID, name, update); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if pictureURL != "" {
		if err := s.queue.EnqueuePictureDownload(ctx, categoryID, update.Name, pictureURL); err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue picture download",
				slog.String("category_id", categoryID),
				slog.String("item", update.Name),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "updated item",
		slog.String("category_id", categoryID),
		slog.String("from", name),
		slog.String("to", update.Name))

	return update, nil
}

// DeleteItem removes an item. The repository's row delete is atomic, so of
// two concurrent deletes exactly one succeeds; the loser gets not-found.
func (s *CatalogService) DeleteItem(ctx context.Context, categoryID, name string) error {
	deleted, err := s.repo.DeleteItem(ctx, categoryID, name)
	if err != nil {
		return err
	}

	s.releasePicture(ctx, deleted.Picture)

	s.logger.InfoContext(ctx, "deleted item",
		slog.String("category_id", categoryID),
		slog.String("name", name))

	return nil
}

// GetPicture returns a stored picture's bytes and content type.
func (s *CatalogService) GetPicture(ctx context.Context, filename string) ([]byte, string, error) {
	exists, err := s.images.Exists(ctx, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check picture: %w", err)
	}
	if !exists {
		return nil, "", fmt.Errorf("picture %s: %w", filename, domain.ErrNotFound)
	}

	data, err := s.images.Download(ctx, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download picture: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// releasePicture queues deletion of a stored picture. Placeholder values
// have nothing to release.
func (s *CatalogService) releasePicture(ctx context.Context, picture string) {
	if picture == "" || picture == domain.NA || picture == domain.PicturePending {
		return
	}
	if err := s.queue.EnqueuePictureDelete(ctx, picture); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue picture delete",
			slog.String("picture", picture),
			slog.String("error", err.Error()))
	}
}
