package catalog

import (
	"fmt"
	"time"
)

// CountdownEnded is shown once an auction end time has passed.
const CountdownEnded = "Ended"

// Remaining formats the time left until end as "{h}h {m}m {s}s" with no
// zero-padding and no day rollover (hours may exceed 23). A nil end yields the
// empty marker, a past end yields CountdownEnded. The caller supplies now so
// formatting stays pure; the one-second tick lives in the browse layer.
func Remaining(end *time.Time, now time.Time) string {
	if end == nil {
		return ""
	}
	delta := end.Sub(now)
	if delta <= 0 {
		return CountdownEnded
	}
	total := int(delta / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
