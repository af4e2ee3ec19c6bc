package handlers

import (
	"net/http"
	"strings"

	"bookingcore/internal/http/middleware"
	"bookingcore/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/day-sheet?date=&staff= (admin)
func GetDaySheet(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		RespondError(c, http.StatusBadRequest, "date is required", nil)
		return
	}
	staffID, okID := queryID(c, "staff")
	if !okID {
		RespondError(c, http.StatusBadRequest, "invalid staff id", nil)
		return
	}

	svc := services.DaySheetService{}
	data, filename, err := svc.Render(c.Request.Context(), claims.TenantID, date, staffID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
