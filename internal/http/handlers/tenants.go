package handlers

import (
	"net/http"

	"bookingcore/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/tenants/:slug/heartbeat
// Cheap change marker for polling dashboards: compare changeSeq with the
// last value seen and refetch only when it moved.
func GetTenantHeartbeat(c *gin.Context) {
	tenant, err := (repositories.TenantRepo{}).GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"changeSeq":    tenant.ChangeSeq,
		"lastChangeAt": tenant.LastChangeAt,
	})
}
