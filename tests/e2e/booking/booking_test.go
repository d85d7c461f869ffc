//go:build e2e

package booking_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"fleetrent/internal/domain/user"
	"fleetrent/internal/handler/dto/request"
	"fleetrent/internal/handler/dto/response"
	"fleetrent/internal/usecase/queries"
	"fleetrent/tests/common/authtest"
	"fleetrent/tests/common/dbtest"
	"fleetrent/tests/common/httptest"
	"fleetrent/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	itemsURL        = "/api/items"
	bookingsURL     = "/api/bookings"
	availabilityURL = "/api/items/%s/availability"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

// setupOperator creates an operator user, logs in, and creates one item,
// returning the access token and the item ID.
func (s *BookingSuite) setupOperator(email, itemName string) (string, uuid.UUID) {
	t := s.T()

	dbtest.CreateTestUser(t, s.DB, email, string(user.RoleOperator))
	token := authtest.LoginUser(t, s.Router, email, "password123")

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, itemsURL,
		request.CreateItemRequest{Name: itemName}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item queries.ItemView
	err := httptest.DecodeResponseBody(t, w.Body, &item)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, item.ID)

	return token, item.ID
}

func (s *BookingSuite) createBooking(token string, body map[string]any, wantStatus int) *response.BookingResponse {
	t := s.T()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, body, token)
	require.Equal(t, wantStatus, w.Code, w.Body.String())

	if wantStatus != http.StatusCreated {
		return nil
	}
	var created response.BookingResponse
	err := httptest.DecodeResponseBody(t, w.Body, &created)
	require.NoError(t, err)
	return &created
}

func bookingBody(itemID uuid.UUID, start, end time.Time) map[string]any {
	return map[string]any{
		"item_id":  itemID.String(),
		"start_at": start.Format(time.RFC3339),
		"end_at":   end.Format(time.RFC3339),
	}
}

func window(day int) (time.Time, time.Time) {
	start := time.Date(2026, 10, day, 9, 0, 0, 0, time.UTC)
	return start, start.Add(48 * time.Hour).Add(9 * time.Hour)
}

// =============================================================================
// TestCreateBooking - booking creation and overlap rejection
// =============================================================================

func (s *BookingSuite) TestCreateBooking() {
	s.Run("Normal case: creates a pending booking", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")
		customerID := dbtest.CreateTestCustomer(t, s.DB, "Acme Logistics")

		start, end := window(5)
		body := bookingBody(itemID, start, end)
		body["customer_id"] = customerID.String()
		body["note"] = "weekend rental"

		created := s.createBooking(token, body, http.StatusCreated)
		require.Equal(t, "pending", created.Status)
		require.Equal(t, itemID, created.ItemID)
		require.True(t, created.StartAt.Equal(start))
		require.True(t, created.EndAt.Equal(end))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var fetched response.BookingResponse
		err := httptest.DecodeResponseBody(t, w.Body, &fetched)
		require.NoError(t, err)
		require.Equal(t, created.ID, fetched.ID)
		require.Equal(t, "Transit Van", fetched.ItemName)
		require.NotNil(t, fetched.Note)
		require.Equal(t, "weekend rental", *fetched.Note)
	})

	s.Run("Normal case: confirm flag creates the booking as confirmed", func() {
		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		body := bookingBody(itemID, start, end)
		body["confirm"] = true

		created := s.createBooking(token, body, http.StatusCreated)
		require.Equal(s.T(), "confirmed", created.Status)
	})

	s.Run("Error case: overlapping booking is rejected with the conflict set", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		body := bookingBody(itemID, start, end)
		body["confirm"] = true
		first := s.createBooking(token, body, http.StatusCreated)

		overlapping := bookingBody(itemID, start.Add(24*time.Hour), end.Add(24*time.Hour))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, overlapping, token)
		httptest.AssertErrorContains(t, w, http.StatusConflict, "conflicts")
		require.Contains(t, w.Body.String(), first.ID.String())
	})

	s.Run("Error case: concurrent creates for the same window admit exactly one", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		body := bookingBody(itemID, start, end)

		type attempt struct {
			code int
			body string
		}
		results := make(chan attempt, 2)
		for range 2 {
			go func() {
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, body, token)
				results <- attempt{code: w.Code, body: w.Body.String()}
			}()
		}

		var codes []int
		var loserBody string
		for range 2 {
			r := <-results
			codes = append(codes, r.code)
			if r.code == http.StatusConflict {
				loserBody = r.body
			}
		}
		require.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, codes)
		require.Contains(t, loserBody, "conflicts")
	})

	s.Run("Normal case: back-to-back bookings share an endpoint", func() {
		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)
		s.createBooking(token, bookingBody(itemID, end, end.Add(24*time.Hour)), http.StatusCreated)
	})

	s.Run("Normal case: date-only input expands to pickup and return times", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		body := map[string]any{
			"item_id":    itemID.String(),
			"start_date": "2026-10-05",
			"end_date":   "2026-10-07",
		}
		created := s.createBooking(token, body, http.StatusCreated)
		require.Equal(t, "2026-10-05T09:00:00Z", created.StartAt.UTC().Format(time.RFC3339))
		require.Equal(t, "2026-10-07T18:00:00Z", created.EndAt.UTC().Format(time.RFC3339))
	})

	s.Run("Error case: archived item refuses new bookings", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			itemsURL+"/"+itemID.String()+"/status",
			request.SetItemStatusRequest{Status: "archived"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		start, end := window(5)
		s.createBooking(token, bookingBody(itemID, start, end), http.StatusUnprocessableEntity)
	})
}

// =============================================================================
// TestAvailability - availability query endpoint
// =============================================================================

func (s *BookingSuite) TestAvailability() {
	s.Run("Normal case: reports the full conflict set for an occupied window", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		body := bookingBody(itemID, start, end)
		body["confirm"] = true
		booked := s.createBooking(token, body, http.StatusCreated)

		url := fmt.Sprintf(availabilityURL, itemID) +
			"?start_at=" + start.Format(time.RFC3339) + "&end_at=" + end.Format(time.RFC3339)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)

		var res response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.False(t, res.Available)
		require.Len(t, res.Conflicts, 1)
		require.Equal(t, booked.ID, res.Conflicts[0].ID)
	})

	s.Run("Normal case: excluding the booking being edited frees its own window", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		url := fmt.Sprintf(availabilityURL, itemID) +
			"?start_at=" + start.Format(time.RFC3339) +
			"&end_at=" + end.Format(time.RFC3339) +
			"&exclude_booking_id=" + booked.ID.String()
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)

		var res response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.True(t, res.Available)
		require.Empty(t, res.Conflicts)
	})

	s.Run("Normal case: date-only query parameters are accepted", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		url := fmt.Sprintf(availabilityURL, itemID) +
			"?start_date=2026-10-05&end_date=2026-10-07"
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)

		var res response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.True(t, res.Available)
	})
}

// =============================================================================
// TestBookingLifecycle - status transitions and cached item status
// =============================================================================

func (s *BookingSuite) transition(token string, bookingID uuid.UUID, action string, wantStatus int) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		bookingsURL+"/"+bookingID.String()+"/"+action, nil, token)
	require.Equal(t, wantStatus, w.Code, w.Body.String())
}

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("Normal case: full lifecycle updates the cached item status", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		s.transition(token, booked.ID, "confirm", http.StatusOK)
		require.Equal(t, "available", dbtest.ItemCachedStatus(t, s.DB, itemID))

		s.transition(token, booked.ID, "start", http.StatusOK)
		require.Equal(t, "rented", dbtest.ItemCachedStatus(t, s.DB, itemID))

		s.transition(token, booked.ID, "complete", http.StatusOK)
		require.Equal(t, "available", dbtest.ItemCachedStatus(t, s.DB, itemID))

		// A completed booking no longer blocks its window
		s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)
	})

	s.Run("Normal case: cancelling frees the window for rebooking", func() {
		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		s.transition(token, booked.ID, "cancel", http.StatusOK)
		s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)
	})

	s.Run("Normal case: booking stored with a NULL note still loads and transitions", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")
		tenantID := dbtest.TenantID(t, s.DB, dbtest.DefaultTenantName)

		start, end := window(5)
		bookingID := uuid.New()
		_, err := s.DB.Exec(t.Context(),
			`INSERT INTO bookings (id, tenant_id, item_id, start_at, end_at, status, note)
			 VALUES ($1, $2, $3, $4, $5, 'pending', NULL)`,
			bookingID, tenantID, itemID, start, end)
		require.NoError(t, err)

		s.transition(token, bookingID, "confirm", http.StatusOK)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+bookingID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	s.Run("Error case: skipping a lifecycle step is rejected with transition detail", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+booked.ID.String()+"/complete", nil, token)
		httptest.AssertErrorContains(t, w, http.StatusBadRequest, `"from":"pending"`)
		require.Contains(t, w.Body.String(), `"to":"completed"`)
	})

	s.Run("Error case: cancelled booking refuses further transitions", func() {
		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		s.transition(token, booked.ID, "cancel", http.StatusOK)
		s.transition(token, booked.ID, "confirm", http.StatusBadRequest)
	})
}

// =============================================================================
// TestEditBookingDates - rescheduling
// =============================================================================

func (s *BookingSuite) TestEditBookingDates() {
	s.Run("Normal case: moves a booking to a free window", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)

		newStart, newEnd := window(12)
		body := map[string]any{
			"start_at": newStart.Format(time.RFC3339),
			"end_at":   newEnd.Format(time.RFC3339),
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			bookingsURL+"/"+booked.ID.String()+"/dates", body, token)

		var updated response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &updated)
		require.True(t, updated.StartAt.Equal(newStart))
		require.True(t, updated.EndAt.Equal(newEnd))
	})

	s.Run("Error case: moving onto another booking reports the conflict", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)
		otherStart, otherEnd := window(12)
		other := s.createBooking(token, bookingBody(itemID, otherStart, otherEnd), http.StatusCreated)

		body := map[string]any{
			"start_at": start.Add(time.Hour).Format(time.RFC3339),
			"end_at":   end.Format(time.RFC3339),
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			bookingsURL+"/"+other.ID.String()+"/dates", body, token)
		httptest.AssertErrorContains(t, w, http.StatusConflict, "conflicts")
	})

	s.Run("Error case: dates are locked once the rental has started", func() {
		t := s.T()

		token, itemID := s.setupOperator("ops@example.com", "Transit Van")

		start, end := window(5)
		booked := s.createBooking(token, bookingBody(itemID, start, end), http.StatusCreated)
		s.transition(token, booked.ID, "confirm", http.StatusOK)
		s.transition(token, booked.ID, "start", http.StatusOK)

		newStart, newEnd := window(12)
		body := map[string]any{
			"start_at": newStart.Format(time.RFC3339),
			"end_at":   newEnd.Format(time.RFC3339),
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			bookingsURL+"/"+booked.ID.String()+"/dates", body, token)
		httptest.AssertErrorContains(t, w, http.StatusBadRequest, "no longer be edited")
	})
}
