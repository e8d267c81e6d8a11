package moment

import (
	"time"

	"github.com/sandevgo/momobot/internal/core"
)

// RemindTime derives when a moment should be surfaced from its event time,
// importance and type. The table is exhaustive; unknown values fall back to
// the mid/event row.
//
//	event   high     event - 30min
//	event   mid      event - 1h
//	event   low      event - 2h
//	habit   any      event
//	emotion high     now + 5min
//	emotion mid/low  event + 1 day
func RemindTime(eventTime time.Time, importance, momentType string, now time.Time) time.Time {
	switch momentType {
	case core.MomentHabit:
		return eventTime
	case core.MomentEmotion:
		if importance == core.ImportanceHigh {
			return now.Add(5 * time.Minute)
		}
		return eventTime.AddDate(0, 0, 1)
	default: // event
		switch importance {
		case core.ImportanceHigh:
			return eventTime.Add(-30 * time.Minute)
		case core.ImportanceLow:
			return eventTime.Add(-2 * time.Hour)
		default: // mid
			return eventTime.Add(-time.Hour)
		}
	}
}

// CanConfirm reports whether status admits the pending/scheduled -> scheduled
// transition. Confirming an already scheduled moment is an idempotent no-op.
func CanConfirm(status string) bool {
	return status == core.StatusPending || status == core.StatusScheduled
}

// CanCancel reports whether status admits cancellation. Cancelling an
// already cancelled moment is an idempotent no-op; completed is terminal and
// owned by the dispatcher.
func CanCancel(status string) bool {
	return status == core.StatusPending || status == core.StatusScheduled || status == core.StatusCancelled
}
