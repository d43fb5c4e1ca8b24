package scoring

import (
	"math"

	"github.com/honorhabits/honor/internal/domain"
)

// Trend holds the period-over-period comparison fields of a score record.
type Trend struct {
	PreviousScore   int
	Improvement     int
	ConsistencyRate int
}

// ComputeTrend compares a freshly computed honor score against the stored
// previous-period record. A first period is never reported as an improvement:
// with no previous record both PreviousScore and Improvement are zero.
func ComputeTrend(honorScore int, previous *domain.PeriodScore, timeline []domain.DayEntry) Trend {
	var t Trend
	if previous != nil {
		t.PreviousScore = previous.HonorScore
		t.Improvement = honorScore - previous.HonorScore
	}

	completed := 0
	for _, e := range timeline {
		if e.Completed {
			completed++
		}
	}
	if len(timeline) > 0 {
		t.ConsistencyRate = int(math.Round(100 * float64(completed) / float64(len(timeline))))
	}
	return t
}
