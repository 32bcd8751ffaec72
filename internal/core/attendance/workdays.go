package attendance

import (
	"math"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// NormalizeDate は日付部分のみを残した UTC 0 時の時刻を返します。
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CountWeekdays は [start, end] に含まれる月曜〜金曜の日数を返します。
func CountWeekdays(start, end time.Time) int {
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if start.After(end) {
		return 0
	}

	// time.Duration は約 292 年で飽和するため、暦日の差は Unix 秒から求めます。
	days := int((end.Unix()-start.Unix())/secondsPerDay) + 1
	weeks := days / 7
	count := weeks * 5

	cursor := start.AddDate(0, 0, weeks*7)
	for i := 0; i < days%7; i++ {
		if isWeekday(cursor) {
			count++
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return count
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Round2 は小数第 3 位を偶数丸め (銀行丸め) して小数第 2 位までにします。
// 3.125 は 3.12、15.625 は 15.62 になります。
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func percentage(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return Round2(numerator / denominator * 100)
}
