package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"bookingcore/internal/repositories"
	"bookingcore/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/availability?tenant=&service=&date=&staff=&resource=
func GetAvailability(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("tenant"))
	date := strings.TrimSpace(c.Query("date"))
	serviceID, err := strconv.ParseInt(c.Query("service"), 10, 64)
	if err != nil || serviceID <= 0 {
		RespondError(c, http.StatusBadRequest, "service id is required", nil)
		return
	}
	if slug == "" || date == "" {
		RespondError(c, http.StatusBadRequest, "tenant and date are required", nil)
		return
	}
	staffID, ok := queryID(c, "staff")
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid staff id", nil)
		return
	}
	resourceID, ok := queryID(c, "resource")
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid resource id", nil)
		return
	}

	ctx := c.Request.Context()
	tenant, err := (repositories.TenantRepo{}).GetBySlug(ctx, slug)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.NewAvailabilityService(nil, featureSet)
	result, err := svc.GetSlots(ctx, services.AvailabilityQuery{
		Tenant:     tenant,
		ServiceID:  serviceID,
		Date:       date,
		StaffID:    staffID,
		ResourceID: resourceID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
