// Package adapters はrecordsフィーチャーの書き込み専用リポジトリを提供します。
package adapters

import (
	"context"

	"stock_sync/internal/feature/records/domain/entity"

	"gorm.io/gorm"
)

// recordGorm は受動テーブルへの書き込み専用リポジトリです。
type recordGorm struct {
	db *gorm.DB
}

// NewRecordRepository は指定されたDB接続でrecordGormリポジトリの新しいインスタンスを生成します。
func NewRecordRepository(db *gorm.DB) *recordGorm {
	return &recordGorm{db: db}
}

// SaveTrainingRecord は学習記録を1件追加します。
func (r *recordGorm) SaveTrainingRecord(ctx context.Context, rec entity.TrainingRecord) error {
	return r.db.WithContext(ctx).Create(&rec).Error
}

// SaveFeedback はフィードバックを1件追加します。
func (r *recordGorm) SaveFeedback(ctx context.Context, fb entity.Feedback) error {
	return r.db.WithContext(ctx).Create(&fb).Error
}
