package booking

import (
	"fmt"
	"time"

	"fleetrent/internal/pkg/errs"
)

var ErrInvalidInterval = errs.New("invalid interval: start must be before end")

// Interval is a half-open time range [start, end). Instants are normalized
// to UTC at construction so that boundary comparisons never depend on the
// caller's location.
type Interval struct {
	start time.Time
	end   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{start: start, end: end}, nil
}

func (iv Interval) Start() time.Time {
	return iv.start
}

func (iv Interval) End() time.Time {
	return iv.end
}

func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.start)
}

func (iv Interval) IsZero() bool {
	return iv.start.IsZero() && iv.end.IsZero()
}

// Overlaps reports whether two half-open intervals share at least one
// instant. Touching endpoints (a.end == b.start) do not overlap, which
// allows back-to-back same-day return and pickup.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.start.Before(other.end) && iv.end.After(other.start)
}

// Contains reports whether start <= t < end.
func (iv Interval) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(iv.start) && t.Before(iv.end)
}

func (iv Interval) Equal(other Interval) bool {
	return iv.start.Equal(other.start) && iv.end.Equal(other.end)
}

// ToTstzrange renders the interval in postgres range literal form.
func (iv Interval) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}
