package usecase

import "time"

// Period は価格履歴をどこまで遡って取得するかを表します。
type Period string

const (
	Period1Year Period = "1year"
	Period3Year Period = "3year"
	Period5Year Period = "5year"
	PeriodAll   Period = "all"
)

// historyFloor はA株の取引開始日で、PeriodAll の下限日です。
var historyFloor = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// Valid は既知の期間かどうかを返します。
func (p Period) Valid() bool {
	switch p {
	case Period1Year, Period3Year, Period5Year, PeriodAll:
		return true
	}
	return false
}

// Floor は today を基準とした取得下限日を返します。未知の期間は PeriodAll と同じ扱いです。
func (p Period) Floor(today time.Time) time.Time {
	switch p {
	case Period1Year:
		return today.AddDate(0, 0, -365)
	case Period3Year:
		return today.AddDate(0, 0, -1095)
	case Period5Year:
		return today.AddDate(0, 0, -1825)
	default:
		return historyFloor
	}
}
