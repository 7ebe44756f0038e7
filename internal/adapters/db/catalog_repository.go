// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/internal/core/ports"
)

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// CatalogRepository persists one store's categories and items. Each store
// process owns its own database, so ids minted here are store-local.
type CatalogRepository struct {
	db     ports.Querier
	logger *slog.Logger
	sb     sq.StatementBuilderType
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db ports.Querier, log *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: log.With(slog.String("repository", "catalog")),
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateCategory inserts a new category.
func (r *CatalogRepository) CreateCategory(ctx context.Context, cat *domain.Category) error {
	query, args, err := r.sb.
		Insert("categories").
		Columns("id", "name", "family", "genus", "attributes", "lifespan").
		Values(cat.ID, cat.Name, cat.Family, cat.Genus, cat.Attributes, cat.Lifespan).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.InfoContext(ctx, "category created",
		slog.String("category_id", cat.ID),
		slog.String("name", cat.Name))

	return nil
}

// FindCategoryByID returns the category with the given id, items included.
// A missing id resolves to (nil, nil).
func (r *CatalogRepository) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.findCategory(ctx, sq.Eq{"id": id})
}

// FindCategoryByName matches the category name case-insensitively.
func (r *CatalogRepository) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.findCategory(ctx, sq.Expr("LOWER(name) = LOWER(?)", name))
}

func (r *CatalogRepository) findCategory(ctx context.Context, cond interface{}) (*domain.Category, error) {
	query, args, err := r.sb.
		Select("id", "name", "family", "genus", "attributes", "lifespan").
		From("categories").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var cat domain.Category
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&cat.ID, &cat.Name, &cat.Family, &cat.Genus, &cat.Attributes, &cat.Lifespan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	items, err := r.ListItems(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	cat.Items = make([]string, 0, len(items))
	for _, item := range items {
		cat.Items = append(cat.Items, item.Name)
	}

	return &cat, nil
}

// ListCategories returns all categories with their item names.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query, args, err := r.sb.
		Select("id", "name", "family", "genus", "attributes", "lifespan").
		From("categories").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	cats := make([]domain.Category, 0)
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Family, &cat.Genus, &cat.Attributes, &cat.Lifespan); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}

	for i := range cats {
		items, err := r.ListItems(ctx, cats[i].ID)
		if err != nil {
			return nil, err
		}
		cats[i].Items = make([]string, 0, len(items))
		for _, item := range items {
			cats[i].Items = append(cats[i].Items, item.Name)
		}
	}

	return cats, nil
}

// DeleteCategory removes an empty category. Deleting a category that still
// has items fails on the FK constraint; callers check first.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id string) error {
	query, args, err := r.sb.
		Delete("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.InfoContext(ctx, "category deleted", slog.String("category_id", id))
	return nil
}

// CreateItem inserts a new item into a category.
func (r *CatalogRepository) CreateItem(ctx context.Context, categoryID string, item *domain.Item) error {
	query, args, err := r.sb.
		Insert("items").
		Columns("category_id", "name", "birthdate", "picture").
		Values(categoryID, item.Name, item.Birthdate, item.Picture).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.InfoContext(ctx, "item created",
		slog.String("category_id", categoryID),
		slog.String("name", item.Name))

	return nil
}

// FindItem matches the item name case-insensitively within a category.
// A missing item resolves to (nil, nil).
func (r *CatalogRepository) FindItem(ctx context.Context, categoryID, name string) (*domain.Item, error) {
	query, args, err := r.sb.
		Select("name", "birthdate", "picture").
		From("items").
		Where(sq.Eq{"category_id": categoryID}).
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var item domain.Item
	err = r.db.QueryRow(ctx, query, args...).Scan(&item.Name, &item.Birthdate, &item.Picture)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return &item, nil
}

// ListItems returns all items in a category in insertion order.
func (r *CatalogRepository) ListItems(ctx context.Context, categoryID string) ([]domain.Item, error) {
	query, args, err := r.sb.
		Select("name", "birthdate", "picture").
		From("items").
		Where(sq.Eq{"category_id": categoryID}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.Name, &item.Birthdate, &item.Picture); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}

	return items, nil
}

// UpdateItem replaces an item's fields.
func (r *CatalogRepository) UpdateItem(ctx context.Context, categoryID, name string, item *domain.Item) error {
	query, args, err := r.sb.
		Update("items").
		Set("name", item.Name).
		Set("birthdate", item.Birthdate).
		Set("picture", item.Picture).
		Where(sq.Eq{"category_id": categoryID}).
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteItem removes an item and returns it. The row delete is the atomic
// arbiter between racing claims: exactly one caller gets the row back, all
// others get domain.ErrNotFound.
func (r *CatalogRepository) DeleteItem(ctx context.Context, categoryID, name string) (*domain.Item, error) {
	const query = `
		DELETE FROM items
		WHERE category_id = $1 AND LOWER(name) = LOWER($2)
		RETURNING name, birthdate, picture`

	var item domain.Item
	err := r.db.QueryRow(ctx, query, categoryID, name).Scan(&item.Name, &item.Birthdate, &item.Picture)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	r.logger.InfoContext(ctx, "item deleted",
		slog.String("category_id", categoryID),
		slog.String("name", item.Name))

	return &item, nil
}

// SetItemPicture records the stored picture filename for an item.
func (r *CatalogRepository) SetItemPicture(ctx context.Context, categoryID, name, picture string) error {
	query, args, err := r.sb.
		Update("items").
		Set("picture", picture).
		Where(sq.Eq{"category_id": categoryID}).
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set item picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// NextCategoryID advances the store's category counter and returns the new
// value as a decimal string, same single-row upsert pattern the order
// ledger uses.
func (r *CatalogRepository) NextCategoryID(ctx context.Context) (string, error) {
	const query = `
		INSERT INTO category_sequence (id, seq)
		VALUES (TRUE, 1)
		ON CONFLICT (id)
		DO UPDATE SET seq = category_sequence.seq + 1
		RETURNING seq`

	var seq int64
	if err := r.db.QueryRow(ctx, query).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to advance category sequence: %w", err)
	}

	return strconv.FormatInt(seq, 10), nil
}
