package handlers

import (
	"net/http"

	"bookingcore/internal/http/middleware"
	"bookingcore/internal/repositories"
	"bookingcore/internal/services"

	"github.com/gin-gonic/gin"
)

type consumeNextRequest struct {
	CustomerID     int64 `json:"customerId"`
	BookingID      int64 `json:"bookingId"`
	MinutesToDebit int64 `json:"minutesToDebit"`
	UsesToDebit    int64 `json:"usesToDebit"`
}

// POST /api/customer-memberships/consume-next (admin)
// Selects the one eligible entitlement and records the debit exactly once
// for the booking.
func ConsumeNextMembership(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	var req consumeNextRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.CustomerID <= 0 || req.BookingID <= 0 {
		RespondError(c, http.StatusBadRequest, "customerId and bookingId are required", nil)
		return
	}

	svc := services.MembershipService{
		Repo:      repositories.MembershipRepo{},
		RequestID: middleware.GetRequestID(c),
	}
	m, err := svc.ConsumeNext(c.Request.Context(), claims.TenantID, req.CustomerID, req.MinutesToDebit, req.UsesToDebit, req.BookingID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": m})
}

// POST /api/customer-memberships (admin) — grant a new entitlement.
func GrantMembership(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	var req services.GrantRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.TenantID = claims.TenantID

	svc := services.MembershipService{
		Repo:      repositories.MembershipRepo{},
		RequestID: middleware.GetRequestID(c),
	}
	m, err := svc.Grant(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": m})
}

// GET /api/customer-memberships?tenant=&customer=
func ListMemberships(c *gin.Context) {
	customerID, ok := queryID(c, "customer")
	if !ok || customerID == nil {
		RespondError(c, http.StatusBadRequest, "customer id is required", nil)
		return
	}
	tenant, err := (repositories.TenantRepo{}).GetBySlug(c.Request.Context(), c.Query("tenant"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	svc := services.MembershipService{Repo: repositories.MembershipRepo{}}
	list, err := svc.ListForCustomer(c.Request.Context(), tenant.ID, *customerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": list})
}

// GET /api/customer-memberships/:id/ledger?tenant=
// Full append-only history backing the balance.
func GetMembershipLedger(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid membership id", nil)
		return
	}
	tenant, err := (repositories.TenantRepo{}).GetBySlug(c.Request.Context(), c.Query("tenant"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	repo := repositories.MembershipRepo{}
	entries, err := repo.LedgerForMembership(c.Request.Context(), tenant.ID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger": entries})
}
