package clock

import "time"

// Fake はテスト用の Clock 実装です。Sleep は実際には待機せず、
// 内部時刻を進めて呼び出し履歴を記録します。
type Fake struct {
	Current time.Time
	Slept   []time.Duration
}

var _ Clock = (*Fake)(nil)

// NewFake は指定時刻から始まる Fake を生成します。
func NewFake(t time.Time) *Fake {
	return &Fake{Current: t}
}

// Now は内部時刻を返します。
func (f *Fake) Now() time.Time { return f.Current }

// Sleep は内部時刻を d だけ進め、待機要求を記録します。
func (f *Fake) Sleep(d time.Duration) {
	f.Slept = append(f.Slept, d)
	f.Current = f.Current.Add(d)
}
