// Package ratelimiter は外部データ提供元への連続アクセスを抑制します。
package ratelimiter

import (
	"log/slog"
	"time"
)

// RateLimiterInterface は、処理済み件数に応じた待機を抽象化するインターフェースです。
type RateLimiterInterface interface {
	Throttle(done, total int)
}

// RateLimiter は一定件数の銘柄を処理するごとに固定時間待機します。
// 呼び出し回数ではなく銘柄数で数えるため、1銘柄あたりの取得回数には依存しません。
type RateLimiter struct {
	every int           // 何銘柄ごとに待機するか
	pause time.Duration // 待機時間
	sleep func(time.Duration)
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// sleep に nil を渡すと time.Sleep を使います。
func NewRateLimiter(every int, pause time.Duration, sleep func(time.Duration)) *RateLimiter {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &RateLimiter{every: every, pause: pause, sleep: sleep}
}

// Throttle は done 件目の銘柄を処理し終えた直後に呼び出します。
// done が every の倍数であれば待機します。ただし最後の銘柄を処理し終えた
// 場合は、もう後続のリクエストが無いため待機しません。
func (rl *RateLimiter) Throttle(done, total int) {
	if rl.every <= 0 || rl.pause <= 0 {
		return
	}
	if done <= 0 || done >= total {
		return
	}
	if done%rl.every != 0 {
		return
	}
	slog.Debug("rate limit pause", "done", done, "total", total, "pause", rl.pause)
	rl.sleep(rl.pause)
}
