package scoring

import (
	"github.com/honorhabits/honor/internal/domain"
)

// BuildTimeline reconstructs the complete per-day sequence for a period from
// raw logs. Every calendar day in the period gets exactly one entry; days
// with no logs default to not completed, weight 1, HasLogs false.
//
// A day with logs counts as completed when the fraction of its habits marked
// completed reaches rules.DayCompletionRatio. The day's weight is the
// maximum weight among its completed habits (1 if none completed).
func BuildTimeline(p domain.Period, logs []domain.DailyLog, rules domain.ScoringRules) []domain.DayEntry {
	byDay := make(map[int64][]domain.DailyLog, len(logs))
	for _, l := range logs {
		key := domain.DayOf(l.Day).Unix()
		byDay[key] = append(byDay[key], l)
	}

	timeline := make([]domain.DayEntry, 0, p.Days())
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		entry := domain.DayEntry{Day: d, Weight: 1}

		if dayLogs := byDay[d.Unix()]; len(dayLogs) > 0 {
			entry.HasLogs = true
			completed, maxWeight := 0, 0
			for _, l := range dayLogs {
				if l.Completed {
					completed++
					if l.Weight > maxWeight {
						maxWeight = l.Weight
					}
				}
			}
			entry.Completed = float64(completed)/float64(len(dayLogs)) >= rules.DayCompletionRatio
			if maxWeight > 0 {
				entry.Weight = maxWeight
			}
		}

		timeline = append(timeline, entry)
	}
	return timeline
}
