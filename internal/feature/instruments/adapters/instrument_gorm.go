// Package adapters はinstrumentsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"stock_sync/internal/feature/instruments/domain/entity"
	"stock_sync/internal/feature/instruments/usecase"

	"gorm.io/gorm"
)

// instrumentGorm はInstrumentRepositoryインターフェースのGORM実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

// NewInstrumentRepository は指定されたDB接続でinstrumentGormリポジトリの新しいインスタンスを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// ReplaceAll はカタログ全体を1つのトランザクション内で置き換えます。
// 全削除と全挿入が不可分に行われるため、途中で失敗した場合に部分的な
// 書き込みが残ることはありません。
func (r *instrumentGorm) ReplaceAll(ctx context.Context, list []entity.Instrument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.Instrument{}).Error; err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		return tx.CreateInBatches(list, 500).Error
	})
}

// List はカタログ順（sort_key昇順）で全銘柄を返します。
func (r *instrumentGorm) List(ctx context.Context) ([]entity.Instrument, error) {
	var rows []entity.Instrument
	if err := r.db.WithContext(ctx).
		Order("sort_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get はコード指定で1銘柄を返します。該当が無い場合は gorm.ErrRecordNotFound を返します。
func (r *instrumentGorm) Get(ctx context.Context, code string) (entity.Instrument, error) {
	var row entity.Instrument
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&row).Error; err != nil {
		return entity.Instrument{}, err
	}
	return row, nil
}
