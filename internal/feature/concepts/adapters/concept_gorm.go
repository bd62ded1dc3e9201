// Package adapters はconceptsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"stock_sync/internal/feature/concepts/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conceptGorm は概念タグの追記専用リポジトリです。
type conceptGorm struct {
	db *gorm.DB
}

// NewConceptRepository は指定されたDB接続でconceptGormリポジトリの新しいインスタンスを生成します。
func NewConceptRepository(db *gorm.DB) *conceptGorm {
	return &conceptGorm{db: db}
}

// AppendBatch は概念タグを挿入します。(code, concept) が既に存在する行は
// 何もせず読み飛ばし、バッチ全体を失敗させません。
func (r *conceptGorm) AppendBatch(ctx context.Context, tags []entity.ConceptTag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&tags).Error
}

// FindByCode は指定銘柄の概念タグを概念名順で返します。
func (r *conceptGorm) FindByCode(ctx context.Context, code string) ([]entity.ConceptTag, error) {
	var rows []entity.ConceptTag
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("concept ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
