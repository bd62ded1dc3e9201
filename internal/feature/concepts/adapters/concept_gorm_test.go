package adapters

import (
	"context"
	"testing"

	"stock_sync/internal/feature/concepts/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.ConceptTag{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestConceptGorm_AppendBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("duplicate keys in a later batch do not abort it", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewConceptRepository(db)

		require.NoError(t, repo.AppendBatch(ctx, []entity.ConceptTag{
			{Code: "600000", Concept: "银行"},
			{Code: "600000", Concept: "上海本地"},
		}))
		// 2度目の取得で一部が重複しても追記は成功する
		require.NoError(t, repo.AppendBatch(ctx, []entity.ConceptTag{
			{Code: "600000", Concept: "银行"},
			{Code: "600000", Concept: "金融改革"},
		}))

		rows, err := repo.FindByCode(ctx, "600000")
		require.NoError(t, err)
		assert.Len(t, rows, 3, "later fetch is additive, existing rows survive")
	})

	t.Run("tags are scoped per instrument", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewConceptRepository(db)

		require.NoError(t, repo.AppendBatch(ctx, []entity.ConceptTag{
			{Code: "600000", Concept: "银行"},
			{Code: "000001", Concept: "银行"},
		}))

		rows, err := repo.FindByCode(ctx, "000001")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "000001", rows[0].Code)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewConceptRepository(db)

		require.NoError(t, repo.AppendBatch(ctx, nil))
	})
}
