package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
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

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func newTestProduct(t *testing.T, sku, title, image string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, catalog.Attributes{Title: title}, image)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SQL(t *testing.T) {
	ctx := context.Background()

	t.Run("find by sku queries by primary key", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"sku", "title", "image_file", "in_stock", "created_at", "updated_at"}).
			AddRow("ABC-1", "Cat Tree", "Front_Photo.jpg", "Y", now, now)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE sku = \$1 ORDER BY "products"."sku" LIMIT \$2`).
			WithArgs("ABC-1", 1).
			WillReturnRows(rows)

		product, err := repo.FindBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		assert.Equal(t, "Cat Tree", product.Title)
		assert.Equal(t, "Front_Photo.jpg", product.CurrentImage())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find by sku maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE sku = \$1`).
			WithArgs("NOPE", 1).
			WillReturnRows(sqlmock.NewRows([]string{"sku"}))

		_, err := repo.FindBySKU(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("upsert uses on conflict do update", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT \("sku"\) DO UPDATE SET .*"image_file"="excluded"."image_file"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Upsert(ctx, newTestProduct(t, "ABC-1", "Cat Tree", "Front_Photo.jpg"))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update is scoped by sku", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET .* WHERE sku = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.Update(ctx, newTestProduct(t, "ABC-1", "New Title", "Front_Photo.jpg"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete is scoped by sku", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "products" WHERE sku = \$1`).
			WithArgs("ABC-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.Delete(ctx, "ABC-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database errors are returned", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE sku = \$1`).
			WithArgs("ABC-1").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ExistsBySKU(ctx, "ABC-1")
		assert.Error(t, err)
	})
}

func TestGormProductRepository_Behavior(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert inserts then overwrites every column", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))

		first := newTestProduct(t, "ABC-1", "Cat Tree", "Front_Photo.jpg")
		first.Brand = "Acme"
		first.MSRP = decimal.NewNullDecimal(decimal.RequireFromString("49.99"))
		require.NoError(t, repo.Upsert(ctx, first))

		second := newTestProduct(t, "ABC-1", "Cat Tower", "Side.jpg")
		require.NoError(t, repo.Upsert(ctx, second))

		got, err := repo.FindBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		assert.Equal(t, "Cat Tower", got.Title)
		assert.Equal(t, "Side.jpg", got.CurrentImage())
		assert.Empty(t, got.Brand)
		assert.False(t, got.MSRP.Valid)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("exists reflects rows", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))

		exists, err := repo.ExistsBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, repo.Upsert(ctx, newTestProduct(t, "ABC-1", "x", "a.jpg")))

		exists, err = repo.ExistsBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("update overwrites fields and keeps created_at", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))

		p := newTestProduct(t, "ABC-1", "Old", "Front_Photo.jpg")
		p.Brand = "Acme"
		pack := 12
		p.CasePackSize = &pack
		p.WeightG = decimal.NewNullDecimal(decimal.RequireFromString("350.5"))
		require.NoError(t, repo.Upsert(ctx, p))

		stored, err := repo.FindBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		createdAt := stored.CreatedAt

		require.NoError(t, stored.Overwrite(catalog.Attributes{Title: "New Title", InStock: catalog.InStock}, ""))
		rows, err := repo.Update(ctx, stored)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := repo.FindBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		assert.Equal(t, "New Title", got.Title)
		assert.Equal(t, "Front_Photo.jpg", got.CurrentImage())
		assert.Empty(t, got.Brand)
		assert.Nil(t, got.CasePackSize)
		assert.False(t, got.WeightG.Valid)
		assert.Equal(t, catalog.InStock, got.InStock)
		assert.True(t, createdAt.Equal(got.CreatedAt))
	})

	t.Run("update of missing sku affects no rows", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))

		rows, err := repo.Update(ctx, newTestProduct(t, "NOPE", "x", "a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("nullable numbers round trip", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))

		p := newTestProduct(t, "ABC-1", "x", "a.jpg")
		pack := 6
		p.CasePackSize = &pack
		p.MSRP = decimal.NewNullDecimal(decimal.RequireFromString("19.95"))
		require.NoError(t, repo.Upsert(ctx, p))

		got, err := repo.FindBySKU(ctx, "ABC-1")
		require.NoError(t, err)
		require.NotNil(t, got.CasePackSize)
		assert.Equal(t, 6, *got.CasePackSize)
		assert.True(t, got.MSRP.Valid)
		assert.True(t, got.MSRP.Decimal.Equal(decimal.RequireFromString("19.95")))
		assert.False(t, got.WeightG.Valid)
	})

	t.Run("list orders by sku", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))
		for _, sku := range []string{"C-3", "A-1", "B-2"} {
			require.NoError(t, repo.Upsert(ctx, newTestProduct(t, sku, "x", "a.jpg")))
		}

		products, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "A-1", products[0].SKU)
		assert.Equal(t, "B-2", products[1].SKU)
		assert.Equal(t, "C-3", products[2].SKU)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := NewGormProductRepository(setupProductTestDB(t))
		require.NoError(t, repo.Upsert(ctx, newTestProduct(t, "ABC-1", "x", "a.jpg")))

		require.NoError(t, repo.Delete(ctx, "ABC-1"))
		require.NoError(t, repo.Delete(ctx, "ABC-1"))

		_, err := repo.FindBySKU(ctx, "ABC-1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
