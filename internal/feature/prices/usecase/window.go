// Package usecase は価格データの取得計画（フェッチウィンドウ）を実装します。
package usecase

import (
	"fmt"
	"time"

	"stock_sync/internal/feature/prices/domain/entity"
)

// Mode はフェッチ計画の種別です。
type Mode string

const (
	// ModeFull は履歴全体（設定された下限日から今日まで）の取得を示します。
	ModeFull Mode = "full"
	// ModeIncremental はウォーターマークの翌日から今日までの取得を示します。
	ModeIncremental Mode = "incremental"
	// ModeSkip は新しいデータが存在し得ないため取得不要であることを示します。
	ModeSkip Mode = "skip"
)

// Plan は1銘柄分のフェッチ指示です。Mode が ModeSkip のとき Start/End は無意味です。
type Plan struct {
	Mode  Mode
	Start time.Time
	End   time.Time
}

// PlanWindow はローカルに未保存の最小の日付範囲を計算します。
//   - watermark が空（保存行なし）→ floor から today までの全量取得
//   - watermark あり → 翌日から today までの増分取得
//   - 翌日が today より後 → 取得不要（ModeSkip）
//
// この絞り込みにより、既存の履歴量に関係なく未取得の日付だけが
// 提供元への要求対象になります。
func PlanWindow(today time.Time, watermark string, floor time.Time) (Plan, error) {
	today = truncateDay(today)

	if watermark == "" {
		return Plan{Mode: ModeFull, Start: truncateDay(floor), End: today}, nil
	}

	// today のタイムゾーンで解釈する。time.Parse はUTC深夜を返すため、
	// UTCより進んだゾーン（中国本土など）ではローカル深夜との瞬間比較が
	// 1日ずれてしまう。
	w, err := time.ParseInLocation(entity.DateLayout, watermark, today.Location())
	if err != nil {
		return Plan{}, fmt.Errorf("parse watermark %q: %w", watermark, err)
	}

	start := w.AddDate(0, 0, 1)
	if start.After(today) {
		return Plan{Mode: ModeSkip}, nil
	}
	return Plan{Mode: ModeIncremental, Start: start, End: today}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
