package contrib

import "time"

var monthAbbrev = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// WeeksPerShard is the width of every shard but possibly the last.
func WeeksPerShard(totalWeeks int) int {
	return (totalWeeks + Shards - 1) / Shards
}

// ClampShard forces i into [0, Shards).
func ClampShard(i int) int {
	return max(0, min(i, Shards-1))
}

// ShardRange returns the half-open week range [start, end) covered by shard
// index. The last shard absorbs whatever is left over.
func ShardRange(index, totalWeeks int) (start, end int) {
	per := WeeksPerShard(totalWeeks)
	start = min(index*per, totalWeeks)
	end = min(start+per, totalWeeks)
	return start, end
}

// ShardLabel names the months spanned by shard index, e.g. "JAN" or "MAR-MAY".
// Empty weeks at either edge are skipped; when the whole range is empty the
// month is estimated from the week number.
func ShardLabel(cal *Calendar, index int) string {
	start, end := ShardRange(index, YearWeeks)

	startMonth, ok := -1, false
	for w := start; w < end && !ok; w++ {
		startMonth, ok = weekMonth(cal, w)
	}
	if !ok {
		startMonth = clampMonth(start / 4)
	}

	endMonth, ok := -1, false
	for w := end - 1; w >= start && !ok; w-- {
		endMonth, ok = weekMonth(cal, w)
	}
	if !ok {
		endMonth = clampMonth((end - 1) / 4)
	}

	if startMonth == endMonth {
		return monthAbbrev[startMonth]
	}
	return monthAbbrev[startMonth] + "-" + monthAbbrev[endMonth]
}

// weekMonth returns the zero-based month of the first day of week w.
func weekMonth(cal *Calendar, w int) (int, bool) {
	if cal == nil || w < 0 || w >= len(cal.Weeks) {
		return 0, false
	}
	days := cal.Weeks[w].Days
	if len(days) == 0 {
		return 0, false
	}
	t, ok := days[0].Time(time.UTC)
	if !ok {
		return 0, false
	}
	return int(t.Month()) - 1, true
}

func clampMonth(m int) int {
	return max(0, min(m, 11))
}
