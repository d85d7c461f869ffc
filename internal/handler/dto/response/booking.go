package response

import (
	"time"

	"fleetrent/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       uuid.UUID  `json:"itemId"`
	ItemName     string     `json:"itemName"`
	CustomerID   *uuid.UUID `json:"customerId,omitempty"`
	CustomerName *string    `json:"customerName,omitempty"`
	StartAt      time.Time  `json:"startAt"`
	EndAt        time.Time  `json:"endAt"`
	Status       string     `json:"status"`
	Note         *string    `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type BookingListResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"itemId"`
	ItemName  string    `json:"itemName"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ConflictResponse struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	StartAt    time.Time  `json:"startAt"`
	EndAt      time.Time  `json:"endAt"`
	Status     string     `json:"status"`
}

type AvailabilityResponse struct {
	Available bool               `json:"available"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:           rm.ID,
		ItemID:       rm.ItemID,
		ItemName:     rm.ItemName,
		CustomerID:   rm.CustomerID,
		CustomerName: rm.CustomerName,
		StartAt:      rm.StartAt,
		EndAt:        rm.EndAt,
		Status:       rm.Status,
		Note:         rm.Note,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

func FromBookingListItem(rm *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:        rm.ID,
		ItemID:    rm.ItemID,
		ItemName:  rm.ItemName,
		StartAt:   rm.StartAt,
		EndAt:     rm.EndAt,
		Status:    rm.Status,
		CreatedAt: rm.CreatedAt,
	}
}

func FromConflicts(conflicts []*queries.BookingConflict) []ConflictResponse {
	out := make([]ConflictResponse, len(conflicts))
	for i, c := range conflicts {
		out[i] = ConflictResponse{
			ID:         c.ID,
			CustomerID: c.CustomerID,
			StartAt:    c.StartAt,
			EndAt:      c.EndAt,
			Status:     c.Status,
		}
	}
	return out
}

func FromAvailabilityResult(rm *queries.AvailabilityResult) *AvailabilityResponse {
	return &AvailabilityResponse{
		Available: rm.Available,
		Conflicts: FromConflicts(rm.Conflicts),
	}
}
