// Package clock は現在時刻取得とスリープの抽象を提供します。
// 日付ウィンドウ計算やスケジューラをテストで決定的に動かすために、
// time パッケージへの直接依存をこのインターフェースの背後に隔離します。
package clock

import "time"

// Clock は時刻の取得と待機の抽象です。
type Clock interface {
	// Now は現在時刻を返します。
	Now() time.Time
	// Sleep は指定された期間ブロックします。
	Sleep(d time.Duration)
}

// System は time パッケージをそのまま使う Clock 実装です。
type System struct{}

var _ Clock = System{}

// Now は time.Now を返します。
func (System) Now() time.Time { return time.Now() }

// Sleep は time.Sleep を呼び出します。
func (System) Sleep(d time.Duration) { time.Sleep(d) }
