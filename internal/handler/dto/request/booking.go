package request

import (
	"strings"
	"time"

	"fleetrent/internal/pkg/config"
	"fleetrent/internal/pkg/errs"
	"fleetrent/internal/usecase/commands"

	"github.com/google/uuid"
)

var (
	ErrMissingPeriod   = errs.New("either timestamps or dates must be provided for both ends")
	ErrAmbiguousPeriod = errs.New("timestamps and dates cannot be mixed")
	ErrBadDateFormat   = errs.New("dates must be formatted as YYYY-MM-DD")
)

// BookingPeriod accepts either exact instants (start_at/end_at) or whole
// days (start_date/end_date). Date-only input is expanded with the
// tenant-wide pickup and return times, so "2026-03-10".."2026-03-12" means
// pickup morning of the 10th, return evening of the 12th.
type BookingPeriod struct {
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	StartDate *string    `json:"start_date,omitempty"`
	EndDate   *string    `json:"end_date,omitempty"`
}

func (p BookingPeriod) Resolve(cfg config.BookingConfig) (start, end time.Time, err error) {
	hasInstants := p.StartAt != nil && p.EndAt != nil
	hasDates := p.StartDate != nil && p.EndDate != nil

	switch {
	case hasInstants && (p.StartDate != nil || p.EndDate != nil):
		return time.Time{}, time.Time{}, ErrAmbiguousPeriod
	case hasInstants:
		return p.StartAt.UTC(), p.EndAt.UTC(), nil
	case hasDates:
		start, err = expandDate(*p.StartDate, cfg.PickupTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err = expandDate(*p.EndDate, cfg.ReturnTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, ErrMissingPeriod
	}
}

func expandDate(date, timeOfDay string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, ErrBadDateFormat
	}
	return t.UTC(), nil
}

type CreateBookingRequest struct {
	ItemID     uuid.UUID  `json:"item_id" binding:"required"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	BookingPeriod
	Note    *string `json:"note,omitempty"`
	Confirm bool    `json:"confirm,omitempty"`
}

func (r CreateBookingRequest) ToInput(cfg config.BookingConfig) (commands.CreateBookingInput, error) {
	start, end, err := r.Resolve(cfg)
	if err != nil {
		return commands.CreateBookingInput{}, err
	}

	note := ""
	if r.Note != nil {
		note = strings.TrimSpace(*r.Note)
	}

	return commands.CreateBookingInput{
		ItemID:     r.ItemID,
		CustomerID: r.CustomerID,
		StartAt:    start,
		EndAt:      end,
		Note:       note,
		Confirm:    r.Confirm,
	}, nil
}

type EditBookingDatesRequest struct {
	BookingPeriod
}

type ListBookingsQuery struct {
	ItemID *uuid.UUID `form:"item_id"`
	Status *string    `form:"status"`
	Limit  int32      `form:"limit"`
	Offset int32      `form:"offset"`
}

// PeriodFromQuery builds a BookingPeriod from URL query parameters
// (start_at/end_at as RFC 3339, start_date/end_date as YYYY-MM-DD).
func PeriodFromQuery(startAt, endAt, startDate, endDate string) (BookingPeriod, error) {
	var p BookingPeriod
	if startAt != "" {
		t, err := time.Parse(time.RFC3339, startAt)
		if err != nil {
			return BookingPeriod{}, errs.Wrap(err, "invalid start_at")
		}
		p.StartAt = &t
	}
	if endAt != "" {
		t, err := time.Parse(time.RFC3339, endAt)
		if err != nil {
			return BookingPeriod{}, errs.Wrap(err, "invalid end_at")
		}
		p.EndAt = &t
	}
	if startDate != "" {
		p.StartDate = &startDate
	}
	if endDate != "" {
		p.EndDate = &endDate
	}
	return p, nil
}
