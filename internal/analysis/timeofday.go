package analysis

import (
	"github.com/edgard/chatlens/internal/ingest"
)

// Time builds the activity profile: hourly histogram, most active
// hour/weekday/date, daytime period shares, and the weekday-by-hour
// heatmap. Messages without a resolved date are skipped; empty input
// yields a zeroed structure.
func Time(messages []ingest.NormalizedMessage) TimeAnalysis {
	var res TimeAnalysis

	perDate := make(map[string]int)
	var perWeekday [7]int
	dated := 0
	var morning, afternoon, evening, night int

	for _, m := range messages {
		if !m.HasDate() {
			continue
		}
		dated++

		hour := m.Date.Hour()
		res.HourlyHistogram[hour]++
		res.Heatmap[int(m.Date.Weekday())][hour]++
		perWeekday[int(m.Date.Weekday())]++
		perDate[m.Date.Format("2006-01-02")]++

		switch {
		case hour >= 5 && hour < 12:
			morning++
		case hour >= 12 && hour < 17:
			afternoon++
		case hour >= 17 && hour < 22:
			evening++
		default:
			night++
		}
	}

	if dated == 0 {
		return res
	}

	for h, n := range res.HourlyHistogram {
		if n > res.HourlyHistogram[res.MostActiveHour] || (n == res.HourlyHistogram[res.MostActiveHour] && h < res.MostActiveHour) {
			res.MostActiveHour = h
		}
	}
	res.MostActiveDay = busiestWeekday(perWeekday)
	res.MostActiveDate = busiestDate(perDate)

	total := float64(dated)
	res.Periods = PeriodShares{
		Morning:   100 * float64(morning) / total,
		Afternoon: 100 * float64(afternoon) / total,
		Evening:   100 * float64(evening) / total,
		Night:     100 * float64(night) / total,
	}
	return res
}

func busiestWeekday(counts [7]int) string {
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return weekdayName(best)
}

func weekdayName(day int) string {
	return [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}[day]
}

// busiestDate picks the calendar date with the most messages, breaking
// ties toward the earlier date for determinism.
func busiestDate(counts map[string]int) string {
	best, bestCount := "", 0
	for date, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || date < best)) {
			best, bestCount = date, n
		}
	}
	return best
}
