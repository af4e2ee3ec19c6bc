package handlers

import (
	"net/http"
	"strings"

	"bookingcore/internal/domain/models"
	"bookingcore/internal/http/middleware"
	"bookingcore/internal/repositories"
	"bookingcore/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
// Header Idempotency-Key makes retries safe: a replay returns 200 with the
// original row instead of creating a duplicate.
func CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader("Idempotency-Key"))

	svc := services.NewBookingService(nil, middleware.GetRequestID(c))
	res, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"booking": res.Booking, "replayed": res.Replayed})
}

// GET /api/bookings/:id?tenant=
func GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid booking id", nil)
		return
	}
	tenant, err := (repositories.TenantRepo{}).GetBySlug(c.Request.Context(), c.Query("tenant"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	b, err := (repositories.BookingRepo{}).GetByID(c.Request.Context(), tenant.ID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GET /api/bookings?tenant=&date=&staff=
// Read side used by polling dashboards.
func ListBookings(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		RespondError(c, http.StatusBadRequest, "date is required", nil)
		return
	}
	staffID, ok := queryID(c, "staff")
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid staff id", nil)
		return
	}
	tenant, err := (repositories.TenantRepo{}).GetBySlug(c.Request.Context(), c.Query("tenant"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	list, err := (repositories.BookingRepo{}).ListDetailedForDay(c.Request.Context(), tenant.ID, date, staffID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

type statusUpdateRequest struct {
	Status models.BookingStatus `json:"status"`
}

// PATCH /api/bookings/:id/status (admin)
func UpdateBookingStatus(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id, okID := paramID(c, "id")
	if !okID {
		RespondError(c, http.StatusBadRequest, "invalid booking id", nil)
		return
	}
	var req statusUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.NewBookingService(nil, middleware.GetRequestID(c))
	b, err := svc.UpdateStatus(c.Request.Context(), claims.TenantID, id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// POST /api/bookings/:id/cancel (admin) — shorthand for the terminal
// transition.
func CancelBooking(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id, okID := paramID(c, "id")
	if !okID {
		RespondError(c, http.StatusBadRequest, "invalid booking id", nil)
		return
	}

	svc := services.NewBookingService(nil, middleware.GetRequestID(c))
	b, err := svc.UpdateStatus(c.Request.Context(), claims.TenantID, id, models.BookingStatusCancelled)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
