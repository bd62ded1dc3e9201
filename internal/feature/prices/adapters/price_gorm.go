package adapters

import (
	"context"

	"stock_sync/internal/feature/prices/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type priceGorm struct {
	db *gorm.DB
}

// NewPriceRepository は指定されたDB接続でpriceGormリポジトリの新しいインスタンスを生成します。
func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceModel は価格データの永続化モデルです。(code, date) が一意です。
type PriceModel struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:20;not null;uniqueIndex:price_code_date,priority:1"`
	Date string `gorm:"size:10;not null;uniqueIndex:price_code_date,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`

	Amount       float64 `gorm:"not null;default:0"`
	PctChange    float64 `gorm:"column:pct_change;not null;default:0"`
	TurnoverRate float64 `gorm:"not null;default:0"`
}

func (PriceModel) TableName() string {
	return "prices"
}

func toModel(e entity.PricePoint) PriceModel {
	return PriceModel{
		Code:         e.Code,
		Date:         e.Date,
		Open:         e.Open,
		High:         e.High,
		Low:          e.Low,
		Close:        e.Close,
		Volume:       e.Volume,
		Amount:       e.Amount,
		PctChange:    e.PctChange,
		TurnoverRate: e.TurnoverRate,
	}
}

func toEntity(m PriceModel) entity.PricePoint {
	return entity.PricePoint{
		Code:         m.Code,
		Date:         m.Date,
		Open:         m.Open,
		High:         m.High,
		Low:          m.Low,
		Close:        m.Close,
		Volume:       m.Volume,
		Amount:       m.Amount,
		PctChange:    m.PctChange,
		TurnoverRate: m.TurnoverRate,
	}
}

// UpsertBatch は価格データを一括で挿入し、(code, date) が衝突した行は
// 値列をすべて新しい値で置き換えます（last-write-wins）。
func (r *priceGorm) UpsertBatch(ctx context.Context, points []entity.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	ms := make([]PriceModel, 0, len(points))
	for _, e := range points {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "amount", "pct_change", "turnover_rate"}),
	}).CreateInBatches(&ms, 500).Error
}

// FindByCode は指定銘柄の価格行を日付昇順で返します。
// from / to は "2006-01-02" 形式で、空文字列なら境界なしです。
func (r *priceGorm) FindByCode(ctx context.Context, code, from, to string) ([]entity.PricePoint, error) {
	q := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("date ASC")
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}

	var rows []PriceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// LatestDates は全銘柄のウォーターマーク（保存済み最新日付）を1クエリで返します。
// 価格行を持たない銘柄はマップに含まれません。
func (r *priceGorm) LatestDates(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Code string
		Date string
	}
	if err := r.db.WithContext(ctx).
		Model(&PriceModel{}).
		Select("code, MAX(date) AS date").
		Group("code").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Code] = row.Date
	}
	return out, nil
}
