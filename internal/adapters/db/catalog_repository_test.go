// internal/adapters/db/catalog_repository_test.go
package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmart/petorder-be/internal/adapters/db"
	"github.com/pawmart/petorder-be/internal/core/domain"
	"github.com/pawmart/petorder-be/test/helpers"
)

func newCatalogRepo(t *testing.T) (*db.CatalogRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return db.NewCatalogRepository(mock, helpers.TestLogger()), mock
}

var categoryColumns = []string{"id", "name", "family", "genus", "attributes", "lifespan"}

func TestCatalogRepository_FindCategoryByID(t *testing.T) {
	t.Run("found_with_items", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)
		ctx := context.Background()

		lifespan := 10
		mock.ExpectQuery("SELECT id, name, family, genus, attributes, lifespan FROM categories").
			WithArgs("1").
			WillReturnRows(pgxmock.NewRows(categoryColumns).
				AddRow("1", "dog", "Canidae", "Canis", []string{"Loyal"}, &lifespan))
		mock.ExpectQuery("SELECT name, birthdate, picture FROM items").
			WithArgs("1").
			WillReturnRows(pgxmock.NewRows([]string{"name", "birthdate", "picture"}).
				AddRow("Rex", "01-02-2020", "NA").
				AddRow("Buddy", "NA", "NA"))

		cat, err := repo.FindCategoryByID(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "dog", cat.Name)
		assert.Equal(t, []string{"Rex", "Buddy"}, cat.Items)
		require.NotNil(t, cat.Lifespan)
		assert.Equal(t, 10, *cat.Lifespan)
	})

	t.Run("missing_resolves_to_nil", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)
		ctx := context.Background()

		mock.ExpectQuery("FROM categories").
			WithArgs("99").
			WillReturnError(pgx.ErrNoRows)

		cat, err := repo.FindCategoryByID(ctx, "99")
		require.NoError(t, err)
		assert.Nil(t, cat)
	})
}

func TestCatalogRepository_FindCategoryByName(t *testing.T) {
	repo, mock := newCatalogRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("DOG").
		WillReturnRows(pgxmock.NewRows(categoryColumns).
			AddRow("1", "dog", "Canidae", "Canis", []string{}, (*int)(nil)))
	mock.ExpectQuery("FROM items").
		WithArgs("1").
		WillReturnRows(pgxmock.NewRows([]string{"name", "birthdate", "picture"}))

	cat, err := repo.FindCategoryByName(ctx, "DOG")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "dog", cat.Name)
	assert.Empty(t, cat.Items)
}

func TestCatalogRepository_DeleteCategory(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectExec("DELETE FROM categories").
			WithArgs("1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.DeleteCategory(context.Background(), "1"))
	})

	t.Run("missing_is_not_found", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectExec("DELETE FROM categories").
			WithArgs("99").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteCategory(context.Background(), "99")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestCatalogRepository_FindItem(t *testing.T) {
	t.Run("name_matches_case_insensitively", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$2\)`).
			WithArgs("1", "REX").
			WillReturnRows(pgxmock.NewRows([]string{"name", "birthdate", "picture"}).
				AddRow("Rex", "01-02-2020", "NA"))

		item, err := repo.FindItem(context.Background(), "1", "REX")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Rex", item.Name)
	})

	t.Run("missing_resolves_to_nil", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectQuery("FROM items").
			WithArgs("1", "Ghost").
			WillReturnError(pgx.ErrNoRows)

		item, err := repo.FindItem(context.Background(), "1", "Ghost")
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestCatalogRepository_UpdateItem(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		item := &domain.Item{Name: "Max", Birthdate: "01-02-2020", Picture: "NA"}
		mock.ExpectExec("UPDATE items").
			WithArgs(item.Name, item.Birthdate, item.Picture, "1", "Rex").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateItem(context.Background(), "1", "Rex", item))
	})

	t.Run("missing_is_not_found", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectExec("UPDATE items").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateItem(context.Background(), "1", "Ghost", &domain.Item{Name: "Ghost"})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestCatalogRepository_DeleteItem(t *testing.T) {
	t.Run("winner_gets_the_row_back", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectQuery("DELETE FROM items").
			WithArgs("1", "Rex").
			WillReturnRows(pgxmock.NewRows([]string{"name", "birthdate", "picture"}).
				AddRow("Rex", "01-02-2020", "abc.jpg"))

		item, err := repo.DeleteItem(context.Background(), "1", "Rex")
		require.NoError(t, err)
		assert.Equal(t, "abc.jpg", item.Picture)
	})

	t.Run("loser_gets_not_found", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectQuery("DELETE FROM items").
			WithArgs("1", "Rex").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.DeleteItem(context.Background(), "1", "Rex")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestCatalogRepository_SetItemPicture(t *testing.T) {
	t.Run("recorded", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectExec("UPDATE items").
			WithArgs("abc.jpg", "1", "Rex").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SetItemPicture(context.Background(), "1", "Rex", "abc.jpg"))
	})

	t.Run("item_gone_is_not_found", func(t *testing.T) {
		repo, mock := newCatalogRepo(t)

		mock.ExpectExec("UPDATE items").
			WithArgs("abc.jpg", "1", "Rex").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetItemPicture(context.Background(), "1", "Rex", "abc.jpg")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestCatalogRepository_NextCategoryID(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery("INSERT INTO category_sequence").
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(5)))

	id, err := repo.NextCategoryID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5", id)
}
