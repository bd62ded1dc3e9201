// Package scheduler は毎日決まった時刻に同期ジョブを起動するドライバを提供します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"stock_sync/internal/shared/clock"
)

// Daily は "HH:MM"（ローカル時刻）で指定した時刻に、1日1回ジョブを実行します。
// 前回の実行がまだ終わっていない場合、その回の起動はスキップされます。
type Daily struct {
	hour, minute int
	clk          clock.Clock
	log          *slog.Logger
	running      atomic.Bool
}

// NewDaily は起動時刻をパースしてDailyを生成します。timeSpec は "HH:MM" 形式です。
func NewDaily(timeSpec string, clk clock.Clock, log *slog.Logger) (*Daily, error) {
	t, err := time.Parse("15:04", timeSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q (want HH:MM): %w", timeSpec, err)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Daily{hour: t.Hour(), minute: t.Minute(), clk: clk, log: log}, nil
}

// Run はctxがキャンセルされるまでブロックし、毎日指定時刻にrunを呼び出します。
// runは別ゴルーチンで起動するため、実行が1日を超えて長引いても次のトリガーは
// 遅延せず、fireの多重起動ガードでその回がスキップされます。
// runの戻り値はログに残すだけで、スケジュールは継続します。
func (d *Daily) Run(ctx context.Context, run func(context.Context) error) error {
	for {
		wait := d.untilNext(d.clk.Now())
		d.log.Info("next run scheduled", "in", wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		go d.fire(ctx, run)
	}
}

// fire は多重起動ガード付きでrunを1回実行します。
func (d *Daily) fire(ctx context.Context, run func(context.Context) error) {
	if !d.running.CompareAndSwap(false, true) {
		d.log.Warn("previous run still in progress, skipping this trigger")
		return
	}
	defer d.running.Store(false)

	start := d.clk.Now()
	if err := run(ctx); err != nil {
		d.log.Error("scheduled run failed", "error", err, "elapsed", d.clk.Now().Sub(start))
		return
	}
	d.log.Info("scheduled run finished", "elapsed", d.clk.Now().Sub(start))
}

// untilNext は now から次の起動時刻までの待ち時間を返します。
// 本日の起動時刻を過ぎている場合は翌日になります。
func (d *Daily) untilNext(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
