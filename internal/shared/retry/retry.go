// Package retry は失敗しうる外部呼び出しを有限回の指数バックオフ付きで
// 再実行するポリシーを提供します。呼び出し結果はタグ付きの Result として返り、
// 呼び出し側が「致命的」か「単一銘柄に隔離可能」かを判断します。
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy は再試行の上限と待機時間を定める値オブジェクトです。
type Policy struct {
	MaxAttempts   int           // 最大試行回数（初回を含む）
	InitialDelay  time.Duration // 1回目の失敗後の待機時間
	BackoffFactor float64       // 待機時間の倍率
}

// DefaultPolicy は元システムと同じ 3回 / 2秒 / 2倍 のポリシーを返します。
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: 2 * time.Second, BackoffFactor: 2}
}

// Status は再試行付き呼び出しの結末を表します。
type Status int

const (
	// StatusOK は呼び出しが成功し、1件以上の行が得られたことを示します。
	StatusOK Status = iota
	// StatusEmpty は呼び出しは成功したが行が0件だったことを示します。
	// 永続化すべきものが無いだけで、失敗ではありません。
	StatusEmpty
	// StatusFailed は全試行が失敗したことを示します。
	StatusFailed
)

// Result は再試行付き呼び出しのタグ付き結果です。
type Result[T any] struct {
	Status   Status
	Rows     []T
	Err      error // StatusFailed のとき最後のエラー
	Attempts int   // 実際に行った試行回数
}

// FetchRows は行スライスを返す操作 op をポリシーに従って実行します。
// 失敗の種別は区別せず、すべてのエラーを一様に再試行します。
// 試行間の待機は sleep 経由で行うため、テストでは無待機の関数を注入できます。
// コンテキストのキャンセルは次の試行に入る前に検知し、打ち切ります。
func FetchRows[T any](ctx context.Context, p Policy, sleep func(time.Duration), op func(context.Context) ([]T, error)) Result[T] {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.BackoffFactor
	b.RandomizationFactor = 0

	var lastErr error
	for i := 1; i <= attempts; i++ {
		rows, err := op(ctx)
		if err == nil {
			if len(rows) == 0 {
				return Result[T]{Status: StatusEmpty, Attempts: i}
			}
			return Result[T]{Status: StatusOK, Rows: rows, Attempts: i}
		}
		lastErr = err

		if i == attempts {
			return Result[T]{Status: StatusFailed, Err: lastErr, Attempts: i}
		}
		sleep(b.NextBackOff())
		if cerr := ctx.Err(); cerr != nil {
			return Result[T]{Status: StatusFailed, Err: cerr, Attempts: i}
		}
	}
	// attempts >= 1 のためここには到達しません
	return Result[T]{Status: StatusFailed, Err: lastErr, Attempts: attempts}
}
