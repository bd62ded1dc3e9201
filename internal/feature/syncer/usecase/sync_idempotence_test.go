package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	conceptadapters "stock_sync/internal/feature/concepts/adapters"
	conceptentity "stock_sync/internal/feature/concepts/domain/entity"
	instrumentadapters "stock_sync/internal/feature/instruments/adapters"
	instrumententity "stock_sync/internal/feature/instruments/domain/entity"
	priceadapters "stock_sync/internal/feature/prices/adapters"
	priceentity "stock_sync/internal/feature/prices/domain/entity"
	"stock_sync/internal/shared/clock"
	"stock_sync/internal/shared/ratelimiter"
	"stock_sync/internal/shared/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestSyncUsecase_Run_IdempotentAcrossRuns は、同一の提供元応答に対して
// 全量ダウンロードを2回実行しても最終状態が1回実行時と一致することを
// 実リポジトリ（インメモリSQLite）で検証します。
func TestSyncUsecase_Run_IdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&instrumententity.Instrument{},
		&priceadapters.PriceModel{},
		&conceptentity.ConceptTag{},
	))

	instRepo := instrumentadapters.NewInstrumentRepository(db)
	priceRepo := priceadapters.NewPriceRepository(db)
	conceptRepo := conceptadapters.NewConceptRepository(db)

	list := []instrumententity.Instrument{
		{Code: "600000", Name: "浦发银行", SortKey: 0},
		{Code: "000001", Name: "平安银行", SortKey: 1},
	}
	catalog := &mockCatalog{
		RefreshFunc: func(ctx context.Context) ([]instrumententity.Instrument, error) {
			if err := instRepo.ReplaceAll(ctx, list); err != nil {
				return nil, err
			}
			return list, nil
		},
	}

	// 提供元の応答は実行をまたいで同一
	conceptNames := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		conceptNames = append(conceptNames, fmt.Sprintf("概念%02d", i))
	}
	market := &mockMarket{
		FetchPriceHistoryFunc: func(ctx context.Context, code string, start, end time.Time) ([]priceentity.PricePoint, error) {
			return []priceentity.PricePoint{
				{Code: code, Date: "2024-01-12", Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
				{Code: code, Date: "2024-01-15", Open: 10.5, High: 12, Low: 10, Close: 11.8, Volume: 120},
			}, nil
		},
		FetchConceptNamesFunc: func(ctx context.Context, code string) ([]string, error) {
			return conceptNames, nil
		},
	}

	clk := clock.NewFake(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	limiter := ratelimiter.NewRateLimiter(5, time.Second, func(time.Duration) {})
	policy := retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, BackoffFactor: 2}
	uc := NewSyncUsecase(catalog, market, priceRepo, conceptRepo, limiter, policy, clk, testLogger())

	snapshot := func() (inst, price, concept int64) {
		db.Model(&instrumententity.Instrument{}).Count(&inst)
		db.Model(&priceadapters.PriceModel{}).Count(&price)
		db.Model(&conceptentity.ConceptTag{}).Count(&concept)
		return
	}

	sum1, err := uc.Run(context.Background(), Options{Period: PeriodAll})
	require.NoError(t, err)
	assert.Equal(t, 2, sum1.Succeeded)
	i1, p1, c1 := snapshot()

	sum2, err := uc.Run(context.Background(), Options{Period: PeriodAll})
	require.NoError(t, err)
	assert.Equal(t, 2, sum2.Succeeded)
	i2, p2, c2 := snapshot()

	assert.Equal(t, i1, i2, "instrument count unchanged by the second run")
	assert.Equal(t, p1, p2, "price count unchanged by the second run")
	assert.Equal(t, c1, c2, "concept count unchanged by the second run")

	assert.Equal(t, int64(2), i1)
	assert.Equal(t, int64(4), p1, "two dates for each of two instruments")
	assert.Equal(t, int64(20), c1, "15 distinct names capped at 10 per instrument")

	// 後続の増分実行はウォーターマーク以後だけを要求する
	market.PriceCalls = nil
	clk.Current = time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	_, err = uc.Run(context.Background(), Options{Period: PeriodAll, Incremental: true})
	require.NoError(t, err)
	require.Len(t, market.PriceCalls, 2)
	for _, call := range market.PriceCalls {
		assert.Equal(t, "2024-01-16", call.Start.Format(priceentity.DateLayout),
			"incremental window starts the day after the watermark")
	}
}
