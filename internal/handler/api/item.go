package api

import (
	"errors"
	"net/http"

	"fleetrent/internal/domain/booking"
	reqdto "fleetrent/internal/handler/dto/request"
	resdto "fleetrent/internal/handler/dto/response"
	"fleetrent/internal/handler/middleware"
	"fleetrent/internal/pkg/config"
	"fleetrent/internal/usecase/commands"
	"fleetrent/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemHandler struct {
	itemCommands   commands.ItemCommands
	itemQueries    queries.ItemQueries
	bookingQueries queries.BookingQueries
	bookingCfg     config.BookingConfig
}

func NewItemHandler(itemCommands commands.ItemCommands, itemQueries queries.ItemQueries, bookingQueries queries.BookingQueries, cfg config.Config) *ItemHandler {
	return &ItemHandler{
		itemCommands:   itemCommands,
		itemQueries:    itemQueries,
		bookingQueries: bookingQueries,
		bookingCfg:     cfg.Booking,
	}
}

// @Summary Create item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateItemRequest true "Item request"
// @Success 201 {object} queries.ItemView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.itemCommands.CreateItem(c.Request.Context(), tenantID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary Get item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} queries.ItemView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID format",
		})
		return
	}

	view, err := h.itemQueries.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List items
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param include_archived query bool false "Include archived items"
// @Success 200 {array} queries.ItemView
// @Failure 401 {object} map[string]string
// @Router /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	includeArchived := c.Query("include_archived") == "true"

	views, err := h.itemQueries.ListByTenant(c.Request.Context(), tenantID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, views)
}

// @Summary Set item status
// @Description Set the display status cache (maintenance, archived, available). Never consulted for availability.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body reqdto.SetItemStatusRequest true "Status request"
// @Success 200 {object} queries.ItemView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /items/{id}/status [patch]
func (h *ItemHandler) SetItemStatus(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID format",
		})
		return
	}

	var req reqdto.SetItemStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.itemCommands.SetItemStatus(c.Request.Context(), tenantID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidItemStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid item status",
			})
		case errors.Is(err, commands.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Check item availability
// @Description Report whether the item is free for a period, with the full set of conflicting bookings
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param start_at query string false "Period start (RFC 3339)"
// @Param end_at query string false "Period end (RFC 3339)"
// @Param start_date query string false "Pickup date (YYYY-MM-DD)"
// @Param end_date query string false "Return date (YYYY-MM-DD)"
// @Param exclude_booking_id query string false "Booking to exclude from the check"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /items/{id}/availability [get]
func (h *ItemHandler) CheckAvailability(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID format",
		})
		return
	}

	period, err := reqdto.PeriodFromQuery(
		c.Query("start_at"), c.Query("end_at"),
		c.Query("start_date"), c.Query("end_date"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	start, end, err := period.Resolve(h.bookingCfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_booking_id"); raw != "" {
		parsed, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid exclude_booking_id format",
			})
			return
		}
		excludeID = &parsed
	}

	result, err := h.bookingQueries.CheckAvailability(c.Request.Context(), tenantID, itemID, start, end, excludeID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
		case errors.Is(err, booking.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Start must be strictly before end",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityResult(result))
}
