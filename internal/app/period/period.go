// Package period resolves half-month scoring windows.
// Every month splits into exactly two periods: days 1–15 and day 16 through
// the true last calendar day (28–31). Resolution is a pure function of a
// date; all boundaries are UTC midnights.
package period

import (
	"time"

	"github.com/honorhabits/honor/internal/domain"
)

// Current returns the period containing the given instant.
func Current(now time.Time) domain.Period {
	day := domain.DayOf(now)
	year, month := day.Year(), day.Month()

	if day.Day() <= 15 {
		return domain.Period{
			Start:  date(year, month, 1),
			End:    date(year, month, 15),
			Number: 1,
			Month:  month,
			Year:   year,
		}
	}

	// Day 0 of the next month is the last day of this one.
	return domain.Period{
		Start:  date(year, month, 16),
		End:    date(year, month+1, 0),
		Number: 2,
		Month:  month,
		Year:   year,
	}
}

// Previous returns the period immediately before p. The previous of a
// period 1 is period 2 of the prior month; the previous of a period 2 is
// period 1 of the same month.
func Previous(p domain.Period) domain.Period {
	if p.Number == 1 {
		end := p.Start.AddDate(0, 0, -1) // last day of the prior month
		return domain.Period{
			Start:  date(end.Year(), end.Month(), 16),
			End:    end,
			Number: 2,
			Month:  end.Month(),
			Year:   end.Year(),
		}
	}

	return domain.Period{
		Start:  date(p.Year, p.Month, 1),
		End:    date(p.Year, p.Month, 15),
		Number: 1,
		Month:  p.Month,
		Year:   p.Year,
	}
}

// JustClosed returns the most recently completed period relative to now.
// Used by the scheduled close jobs and the no-argument manual batch.
func JustClosed(now time.Time) domain.Period {
	return Previous(Current(now))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
