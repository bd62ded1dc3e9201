// Package usecase はカタログ（銘柄一覧）更新のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_sync/internal/feature/instruments/domain/entity"
	"stock_sync/internal/shared/retry"
)

// enrichmentMarkets は補強フィードを取得する取引所の一覧です。
var enrichmentMarkets = []string{"SH", "SZ"}

// DirectoryProvider は外部データ提供元から銘柄リストを取得するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DirectoryProvider interface {
	// FetchInstrumentList は全銘柄のコードと名称を返します（プライマリフィード）。
	FetchInstrumentList(ctx context.Context) ([]entity.Instrument, error)
	// FetchExchangeDirectory は指定取引所の銘柄詳細（業種・地域など）を返します。
	FetchExchangeDirectory(ctx context.Context, market string) ([]entity.Instrument, error)
	// FetchListingDates はコードから上場日への対応表を返します。
	FetchListingDates(ctx context.Context) (map[string]string, error)
}

// InstrumentRepository は銘柄カタログの永続化を抽象化します。
type InstrumentRepository interface {
	// ReplaceAll はカタログ全体を新しいリストで置き換えます。
	ReplaceAll(ctx context.Context, list []entity.Instrument) error
	// List はカタログ順で全銘柄を返します。
	List(ctx context.Context) ([]entity.Instrument, error)
}

// CatalogUsecase は銘柄カタログの更新ユースケースを定義します。
type CatalogUsecase struct {
	provider DirectoryProvider
	repo     InstrumentRepository
	policy   retry.Policy
	wait     func(time.Duration)
	log      *slog.Logger
}

// NewCatalogUsecase はCatalogUsecaseの新しいインスタンスを生成します。
// wait は再試行間の待機に使われ、テストでは無待機の関数を注入できます。
func NewCatalogUsecase(provider DirectoryProvider, repo InstrumentRepository, policy retry.Policy, wait func(time.Duration), log *slog.Logger) *CatalogUsecase {
	if wait == nil {
		wait = time.Sleep
	}
	return &CatalogUsecase{provider: provider, repo: repo, policy: policy, wait: wait, log: log}
}

// Refresh はプライマリフィードから銘柄リストを取得し、取引所別フィードで補強した上で
// カタログ全体を置き換えます。プライマリフィードの失敗は致命的で、エラーを返します。
// 補強フィードと上場日取得の失敗は警告ログに留め、処理を続行します。
// 戻り値は永続化したカタログ順の銘柄リストです。
func (c *CatalogUsecase) Refresh(ctx context.Context) ([]entity.Instrument, error) {
	res := retry.FetchRows(ctx, c.policy, c.wait, c.provider.FetchInstrumentList)
	switch res.Status {
	case retry.StatusFailed:
		return nil, fmt.Errorf("fetch instrument list: %w", res.Err)
	case retry.StatusEmpty:
		return nil, fmt.Errorf("fetch instrument list: provider returned no instruments")
	}
	primary := res.Rows
	c.log.Info("fetched instrument list", "count", len(primary))

	var enrichment []entity.Instrument
	for _, market := range enrichmentMarkets {
		m := market
		er := retry.FetchRows(ctx, c.policy, c.wait, func(ctx context.Context) ([]entity.Instrument, error) {
			return c.provider.FetchExchangeDirectory(ctx, m)
		})
		switch er.Status {
		case retry.StatusFailed:
			c.log.Warn("exchange directory unavailable", "market", m, "error", er.Err)
		case retry.StatusEmpty:
			c.log.Warn("exchange directory empty", "market", m)
		default:
			enrichment = append(enrichment, er.Rows...)
		}
	}

	merged := mergeDirectory(primary, enrichment)

	// 上場日はベストエフォート。失敗してもカタログの永続化は妨げない。
	if dates, err := c.provider.FetchListingDates(ctx); err != nil {
		c.log.Warn("listing dates unavailable", "error", err)
	} else {
		applyListingDates(merged, dates)
	}

	if err := c.repo.ReplaceAll(ctx, merged); err != nil {
		return nil, fmt.Errorf("replace instruments: %w", err)
	}
	c.log.Info("instrument catalog replaced", "count", len(merged))
	return merged, nil
}
