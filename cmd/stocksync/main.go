package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	conceptadapters "stock_sync/internal/feature/concepts/adapters"
	instrumentadapters "stock_sync/internal/feature/instruments/adapters"
	instrumentusecase "stock_sync/internal/feature/instruments/usecase"
	priceadapters "stock_sync/internal/feature/prices/adapters"
	syncerusecase "stock_sync/internal/feature/syncer/usecase"
	"stock_sync/internal/platform/db"
	"stock_sync/internal/platform/externalapi/eastmoney"
	platformhttp "stock_sync/internal/platform/http"
	"stock_sync/internal/platform/scheduler"
	"stock_sync/internal/shared/clock"
	"stock_sync/internal/shared/ratelimiter"
	"stock_sync/internal/shared/retry"
)

var (
	flagDBPath     string
	flagDebug      bool
	flagMaxRetries int
	flagRetryDelay time.Duration
)

func main() {
	// .envは任意。なければ環境変数のみで動く
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "stocksync",
		Short:         "A株の銘柄・日足・概念タグをローカルDBへ同期するツール",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLiteデータベースのパス (default "+db.DefaultSQLitePath+")")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "デバッグログを有効にする")
	root.PersistentFlags().IntVar(&flagMaxRetries, "max-retries", retry.DefaultPolicy().MaxAttempts, "取得失敗時の最大試行回数")
	root.PersistentFlags().DurationVar(&flagRetryDelay, "retry-delay", retry.DefaultPolicy().InitialDelay, "初回リトライまでの待ち時間")

	root.AddCommand(newDownloadAllCmd(), newDailyUpdateCmd(), newStartScheduleCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newDownloadAllCmd() *cobra.Command {
	var (
		period      string
		incremental bool
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "download-all",
		Short: "全銘柄の株価履歴と概念タグを取得する",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := syncerusecase.Options{
				Period:      syncerusecase.Period(period),
				Incremental: incremental,
				Limit:       limit,
			}
			if !opts.Period.Valid() {
				return fmt.Errorf("invalid period %q (want 1year, 3year, 5year or all)", period)
			}
			return runSync(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&period, "period", string(syncerusecase.PeriodAll), "取得期間 (1year|3year|5year|all)")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "既存データの続きからのみ取得する")
	cmd.Flags().IntVar(&limit, "limit", 0, "先頭N銘柄のみ処理する (0で無制限)")
	return cmd
}

func newDailyUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily-update",
		Short: "増分同期を1回実行する",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), syncerusecase.Options{
				Period:      syncerusecase.PeriodAll,
				Incremental: true,
			})
		},
	}
}

func newStartScheduleCmd() *cobra.Command {
	var timeSpec string
	cmd := &cobra.Command{
		Use:   "start-schedule",
		Short: "毎日決まった時刻に増分同期を実行し続ける",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			daily, err := scheduler.NewDaily(timeSpec, clock.System{}, log)
			if err != nil {
				return err
			}
			log.Info("scheduler started", "time", timeSpec)
			err = daily.Run(cmd.Context(), func(ctx context.Context) error {
				return runSync(ctx, syncerusecase.Options{
					Period:      syncerusecase.PeriodAll,
					Incremental: true,
				})
			})
			if err == context.Canceled {
				log.Info("scheduler stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&timeSpec, "time", "17:30", "起動時刻 (HH:MM)")
	return cmd
}

// runSync は依存を組み立てて同期を1回実行します。
func runSync(ctx context.Context, opts syncerusecase.Options) error {
	log := newLogger()

	gormDB, err := db.OpenDB(flagDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	cfg := eastmoney.LoadConfig()
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
	provider := eastmoney.NewClient(cfg, httpClient)

	instRepo := instrumentadapters.NewInstrumentRepository(gormDB)
	priceRepo := priceadapters.NewPriceRepository(gormDB)
	conceptRepo := conceptadapters.NewConceptRepository(gormDB)

	policy := retry.Policy{
		MaxAttempts:   flagMaxRetries,
		InitialDelay:  flagRetryDelay,
		BackoffFactor: retry.DefaultPolicy().BackoffFactor,
	}

	catalog := instrumentusecase.NewCatalogUsecase(provider, instRepo, policy, nil, log)
	limiter := ratelimiter.NewRateLimiter(5, 3*time.Second, nil)

	sync := syncerusecase.NewSyncUsecase(catalog, provider, priceRepo, conceptRepo, limiter, policy, clock.System{}, log)

	summary, err := sync.Run(ctx, opts)
	if err != nil {
		return err
	}
	// 銘柄単位の失敗は集計に出すだけで終了コードは成功のまま。
	// 非ゼロ終了はカタログ更新などの致命的エラーだけ。
	log.Info("sync finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Second))
	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
