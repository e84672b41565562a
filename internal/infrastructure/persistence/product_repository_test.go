package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	t.Run("returns empty slice without querying for no IDs", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		products, err := repo.FindByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loads products with their variations", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		variationID := uuid.New()

		productRows := sqlmock.NewRows([]string{"id", "supplier_id", "name", "stock", "wholesale_price", "version"}).
			AddRow(productID, uuid.New(), "Robe satin", int64(12), decimal.NewFromInt(1200), 1)
		variationRows := sqlmock.NewRows([]string{"id", "product_id", "color", "size", "stock", "wholesale_price"}).
			AddRow(variationID, productID, "Rouge", "M", int64(12), decimal.NewFromInt(1200))

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN \(\$1\)`).
			WithArgs(productID).
			WillReturnRows(productRows)
		mock.ExpectQuery(`SELECT \* FROM "product_variations" WHERE "product_variations"\."product_id" = \$1`).
			WithArgs(productID).
			WillReturnRows(variationRows)

		products, err := repo.FindByIDs(context.Background(), []uuid.UUID{productID})

		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Len(t, products[0].Variations, 1)
		assert.Equal(t, "Rouge / M", products[0].Variations[0].Label())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveStockWithLock(t *testing.T) {
	newVersionedProduct := func(t *testing.T) *catalog.Product {
		t.Helper()
		product, err := catalog.NewProduct(uuid.New(), "Robe satin", "RS-01", 10, decimal.NewFromInt(1200))
		require.NoError(t, err)
		_, err = product.AddVariation("Rouge", "M", 10, decimal.NewFromInt(1200))
		require.NoError(t, err)
		variationID := product.Variations[0].ID
		require.NoError(t, product.Reserve(&variationID, 2))
		return product
	}

	t.Run("writes product and variation counters in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "product_variations" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveStockWithLock(context.Background(), product)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrConcurrencyConflict when the version gate fails", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveStockWithLock(context.Background(), product)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
