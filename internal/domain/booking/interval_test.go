//go:build unit

package booking_test

import (
	"testing"
	"time"

	"fleetrent/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestNewInterval(t *testing.T) {
	t.Run("valid interval", func(t *testing.T) {
		iv, err := booking.NewInterval(ts(t, "2026-03-10T09:00:00Z"), ts(t, "2026-03-12T18:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, ts(t, "2026-03-10T09:00:00Z"), iv.Start())
		assert.Equal(t, ts(t, "2026-03-12T18:00:00Z"), iv.End())
	})

	t.Run("start equals end", func(t *testing.T) {
		_, err := booking.NewInterval(ts(t, "2026-03-10T09:00:00Z"), ts(t, "2026-03-10T09:00:00Z"))
		assert.ErrorIs(t, err, booking.ErrInvalidInterval)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := booking.NewInterval(ts(t, "2026-03-12T09:00:00Z"), ts(t, "2026-03-10T09:00:00Z"))
		assert.ErrorIs(t, err, booking.ErrInvalidInterval)
	})

	t.Run("normalizes to UTC", func(t *testing.T) {
		loc := time.FixedZone("JST", 9*3600)
		iv, err := booking.NewInterval(
			time.Date(2026, 3, 10, 18, 0, 0, 0, loc),
			time.Date(2026, 3, 11, 18, 0, 0, 0, loc),
		)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, iv.Start().Location())
		assert.Equal(t, ts(t, "2026-03-10T09:00:00Z"), iv.Start())
	})
}

func TestIntervalOverlaps(t *testing.T) {
	base := func(t *testing.T) booking.Interval {
		t.Helper()
		iv, err := booking.NewInterval(ts(t, "2026-03-10T00:00:00Z"), ts(t, "2026-03-20T00:00:00Z"))
		require.NoError(t, err)
		return iv
	}

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"identical", "2026-03-10T00:00:00Z", "2026-03-20T00:00:00Z", true},
		{"fully inside", "2026-03-12T00:00:00Z", "2026-03-15T00:00:00Z", true},
		{"fully containing", "2026-03-01T00:00:00Z", "2026-03-31T00:00:00Z", true},
		{"overlapping head", "2026-03-05T00:00:00Z", "2026-03-11T00:00:00Z", true},
		{"overlapping tail", "2026-03-19T00:00:00Z", "2026-03-25T00:00:00Z", true},
		{"one nanosecond of overlap", "2026-03-19T23:59:59.999999999Z", "2026-03-25T00:00:00Z", true},
		{"touching at start", "2026-03-01T00:00:00Z", "2026-03-10T00:00:00Z", false},
		{"touching at end", "2026-03-20T00:00:00Z", "2026-03-25T00:00:00Z", false},
		{"entirely before", "2026-02-01T00:00:00Z", "2026-02-10T00:00:00Z", false},
		{"entirely after", "2026-04-01T00:00:00Z", "2026-04-10T00:00:00Z", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := booking.NewInterval(ts(t, tc.start), ts(t, tc.end))
			require.NoError(t, err)

			assert.Equal(t, tc.want, base(t).Overlaps(other))
			// Overlap is symmetric.
			assert.Equal(t, tc.want, other.Overlaps(base(t)))
		})
	}
}

func TestIntervalContains(t *testing.T) {
	iv, err := booking.NewInterval(ts(t, "2026-03-10T00:00:00Z"), ts(t, "2026-03-20T00:00:00Z"))
	require.NoError(t, err)

	assert.True(t, iv.Contains(ts(t, "2026-03-10T00:00:00Z")), "start is included")
	assert.True(t, iv.Contains(ts(t, "2026-03-15T00:00:00Z")))
	assert.False(t, iv.Contains(ts(t, "2026-03-20T00:00:00Z")), "end is excluded")
	assert.False(t, iv.Contains(ts(t, "2026-03-09T23:59:59Z")))
}

func TestIntervalDuration(t *testing.T) {
	iv, err := booking.NewInterval(ts(t, "2026-03-10T09:00:00Z"), ts(t, "2026-03-10T18:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour, iv.Duration())
}
