// Package usecase は1回分の同期実行（カタログ更新 → 銘柄ごとの計画・取得・永続化）を
// 駆動するオーケストレーターを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	conceptentity "stock_sync/internal/feature/concepts/domain/entity"
	conceptusecase "stock_sync/internal/feature/concepts/usecase"
	instrumententity "stock_sync/internal/feature/instruments/domain/entity"
	priceentity "stock_sync/internal/feature/prices/domain/entity"
	priceusecase "stock_sync/internal/feature/prices/usecase"
	"stock_sync/internal/shared/clock"
	"stock_sync/internal/shared/ratelimiter"
	"stock_sync/internal/shared/retry"
)

// CatalogRefresher はカタログ更新を抽象化します。
type CatalogRefresher interface {
	Refresh(ctx context.Context) ([]instrumententity.Instrument, error)
}

// MarketDataProvider は外部データ提供元からの時系列・概念取得を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketDataProvider interface {
	// FetchPriceHistory は [start, end] の日次OHLCVを返します。
	FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]priceentity.PricePoint, error)
	// FetchConceptNames は銘柄が属する概念板块の名称一覧を返します。
	FetchConceptNames(ctx context.Context, code string) ([]string, error)
}

// PriceRepository は価格データの永続化を抽象化します。
type PriceRepository interface {
	UpsertBatch(ctx context.Context, points []priceentity.PricePoint) error
	// LatestDates は全銘柄のウォーターマークを1クエリで返します。
	LatestDates(ctx context.Context) (map[string]string, error)
}

// ConceptRepository は概念タグの永続化を抽象化します。
type ConceptRepository interface {
	AppendBatch(ctx context.Context, tags []conceptentity.ConceptTag) error
}

// Options は1回の同期実行の形を決めます。
type Options struct {
	Period      Period // 全量取得時にどこまで遡るか
	Incremental bool   // ウォーターマークに基づく増分取得を行うか
	Limit       int    // 0より大きい場合、カタログ先頭から処理する銘柄数の上限
}

// Summary は1回の同期実行の集計結果です。永続化はされません。
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// SyncUsecase は同期実行のオーケストレーターです。
type SyncUsecase struct {
	catalog  CatalogRefresher
	market   MarketDataProvider
	prices   PriceRepository
	concepts ConceptRepository
	limiter  ratelimiter.RateLimiterInterface
	policy   retry.Policy
	clk      clock.Clock
	log      *slog.Logger
}

// NewSyncUsecase はSyncUsecaseの新しいインスタンスを生成します。
func NewSyncUsecase(
	catalog CatalogRefresher,
	market MarketDataProvider,
	prices PriceRepository,
	concepts ConceptRepository,
	limiter ratelimiter.RateLimiterInterface,
	policy retry.Policy,
	clk clock.Clock,
	log *slog.Logger,
) *SyncUsecase {
	return &SyncUsecase{
		catalog:  catalog,
		market:   market,
		prices:   prices,
		concepts: concepts,
		limiter:  limiter,
		policy:   policy,
		clk:      clk,
		log:      log,
	}
}

// Run は1回分の同期を実行します。
// カタログ更新の失敗だけが致命的でエラーを返します。銘柄単位の失敗はすべて
// ループ内で吸収され、集計に記録された上で次の銘柄へ進みます。
func (s *SyncUsecase) Run(ctx context.Context, opts Options) (Summary, error) {
	started := s.clk.Now()
	s.log.Info("sync run started", "period", opts.Period, "incremental", opts.Incremental)

	list, err := s.catalog.Refresh(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("catalog refresh: %w", err)
	}

	if opts.Limit > 0 && len(list) > opts.Limit {
		s.log.Info("limiting catalog", "limit", opts.Limit, "catalog", len(list))
		list = list[:opts.Limit]
	}

	// ウォーターマークは銘柄ごとに問い合わせず、1パスでまとめて解決する。
	// 解決に失敗しても実行は止めず、全量取得に切り替える
	// （upsertなので再取得は安全）。
	incremental := opts.Incremental
	var marks map[string]string
	if incremental {
		marks, err = s.prices.LatestDates(ctx)
		if err != nil {
			s.log.Warn("watermark resolution failed, falling back to full windows", "error", err)
			incremental = false
		}
	}

	today := s.clk.Now()
	floor := opts.Period.Floor(today)

	sum := Summary{Total: len(list)}
	for i, inst := range list {
		if err := ctx.Err(); err != nil {
			// 外部からの中断。コミット済みの書き込みはそのまま残る。
			s.log.Warn("sync run interrupted", "processed", i, "error", err)
			sum.Elapsed = s.clk.Now().Sub(started)
			return sum, err
		}

		s.log.Info("processing instrument",
			"code", inst.Code, "name", inst.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(list)))

		if s.syncOne(ctx, inst, marks[inst.Code], today, floor, incremental) {
			sum.Succeeded++
		} else {
			sum.Failed++
		}

		s.limiter.Throttle(i+1, len(list))
	}

	sum.Elapsed = s.clk.Now().Sub(started)
	s.log.Info("sync run finished",
		"total", sum.Total, "succeeded", sum.Succeeded, "failed", sum.Failed, "elapsed", sum.Elapsed)
	return sum, nil
}

// syncOne は1銘柄分の価格と概念を取得・永続化します。戻り値は成功かどうかで、
// 失敗してもこの銘柄の外には伝播しません。
func (s *SyncUsecase) syncOne(ctx context.Context, inst instrumententity.Instrument, watermark string, today, floor time.Time, incremental bool) bool {
	ok := true

	plan := priceusecase.Plan{Mode: priceusecase.ModeFull, Start: floor, End: today}
	if incremental {
		p, err := priceusecase.PlanWindow(today, watermark, floor)
		if err != nil {
			// 壊れたウォーターマークは全量取得で修復する（upsertなので再取得は安全）
			s.log.Warn("invalid watermark, falling back to full window", "code", inst.Code, "error", err)
		} else {
			plan = p
		}
	}

	if plan.Mode == priceusecase.ModeSkip {
		s.log.Debug("prices up to date", "code", inst.Code, "watermark", watermark)
	} else {
		res := retry.FetchRows(ctx, s.policy, s.clk.Sleep, func(ctx context.Context) ([]priceentity.PricePoint, error) {
			return s.market.FetchPriceHistory(ctx, inst.Code, plan.Start, plan.End)
		})
		switch res.Status {
		case retry.StatusFailed:
			s.log.Error("price fetch failed", "code", inst.Code, "name", inst.Name, "attempts", res.Attempts, "error", res.Err)
			ok = false
		case retry.StatusEmpty:
			s.log.Warn("no price data returned", "code", inst.Code, "mode", plan.Mode)
		case retry.StatusOK:
			if err := s.prices.UpsertBatch(ctx, res.Rows); err != nil {
				s.log.Error("price upsert failed", "code", inst.Code, "rows", len(res.Rows), "error", err)
				ok = false
			} else {
				s.log.Debug("prices stored", "code", inst.Code, "rows", len(res.Rows), "mode", plan.Mode)
			}
		}
	}

	// 概念は価格の鮮度に関係なく毎回取得し直す
	cres := retry.FetchRows(ctx, s.policy, s.clk.Sleep, func(ctx context.Context) ([]string, error) {
		return s.market.FetchConceptNames(ctx, inst.Code)
	})
	switch cres.Status {
	case retry.StatusFailed:
		s.log.Error("concept fetch failed", "code", inst.Code, "name", inst.Name, "attempts", cres.Attempts, "error", cres.Err)
		ok = false
	case retry.StatusEmpty:
		s.log.Warn("no concept data returned", "code", inst.Code)
	case retry.StatusOK:
		tags := conceptusecase.Normalize(inst.Code, cres.Rows)
		if err := s.concepts.AppendBatch(ctx, tags); err != nil {
			s.log.Error("concept append failed", "code", inst.Code, "error", err)
			ok = false
		}
	}

	return ok
}
