package scoring

import "github.com/honorhabits/honor/internal/domain"

// Streak bonus thresholds, largest first. A day whose streak length is a
// multiple of several thresholds is awarded only the largest one, so an
// unbroken run pays 5 at day 5, 15 at day 10, and 30 at day 15.
var streakThresholds = []struct {
	Days  int
	Bonus int
}{
	{15, 30},
	{10, 15},
	{5, 5},
}

// AnnotateStreaks walks the timeline in chronological order, filling each
// day's streak length and one-time bonus award. A missed day resets the
// streak to zero. Returns the total bonus for the period.
func AnnotateStreaks(timeline []domain.DayEntry) int {
	total, streak := 0, 0
	for i := range timeline {
		if timeline[i].Completed {
			streak++
		} else {
			streak = 0
		}
		timeline[i].Streak = streak
		timeline[i].Bonus = 0

		if streak == 0 {
			continue
		}
		for _, t := range streakThresholds {
			if streak%t.Days == 0 {
				timeline[i].Bonus = t.Bonus
				total += t.Bonus
				break
			}
		}
	}
	return total
}
