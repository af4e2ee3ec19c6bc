package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/repositories"
	"bookingcore/internal/slotmath"
	"bookingcore/internal/utils"

	"github.com/google/uuid"
)

// pastStartTolerance absorbs clock skew between clients and the server.
const pastStartTolerance = 60 * time.Second

// BookingService owns the atomic create-booking protocol and the status
// transition matrix. One transaction covers the locked conflict recheck,
// the insert and the optional membership debit, so two concurrent requests
// can never both believe the same slot is free.
type BookingService struct {
	DB           *sql.DB
	TenantRepo   repositories.TenantRepo
	ServiceRepo  repositories.ServiceRepo
	CustomerRepo repositories.CustomerRepo
	BookingRepo  repositories.BookingRepo
	BlackoutRepo repositories.BlackoutRepo
	Membership   MembershipService
	Checker      ConflictChecker
	RequestID    string
	Now          func() time.Time
}

func NewBookingService(db *sql.DB, requestID string) BookingService {
	return BookingService{
		DB:           db,
		TenantRepo:   repositories.TenantRepo{DB: db},
		ServiceRepo:  repositories.ServiceRepo{DB: db},
		CustomerRepo: repositories.CustomerRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		BlackoutRepo: repositories.BlackoutRepo{DB: db},
		Membership:   MembershipService{DB: db, Repo: repositories.MembershipRepo{DB: db}, RequestID: requestID},
		RequestID:    requestID,
	}
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateBookingRequest struct {
	TenantSlug      string `json:"tenant"`
	ServiceID       int64  `json:"serviceId"`
	StaffID         *int64 `json:"staffId"`
	ResourceID      *int64 `json:"resourceId"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM
	DurationMinutes int    `json:"durationMinutes"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	UseMembership   bool   `json:"useMembership"`
	Notes           string `json:"notes"`

	// From the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

type CreateBookingResult struct {
	Booking  models.Booking
	Replayed bool
}

// Create runs the booking protocol: validate, resolve customer, blackout
// check, advisory conflict check, then one transaction with a locked
// recheck, the insert and the optional entitlement debit. Replays via the
// idempotency key return the existing row unchanged.
func (s BookingService) Create(ctx context.Context, req CreateBookingRequest) (CreateBookingResult, error) {
	tenant, err := s.TenantRepo.GetBySlug(ctx, req.TenantSlug)
	if err != nil {
		return CreateBookingResult{}, err
	}

	svc, err := s.ServiceRepo.GetByID(ctx, tenant.ID, req.ServiceID)
	if err != nil {
		return CreateBookingResult{}, err
	}
	if !svc.IsActive {
		return CreateBookingResult{}, domain.ValidationError{Field: "serviceId", Msg: "service is not active"}
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = svc.DurationMinutes
	}
	if duration <= 0 {
		return CreateBookingResult{}, domain.ValidationError{Field: "durationMinutes", Msg: "duration could not be resolved"}
	}

	if svc.RequiresStaff && req.StaffID == nil {
		return CreateBookingResult{}, domain.ValidationError{Field: "staffId", Msg: "service requires a staff selection"}
	}
	if svc.RequiresResource && req.ResourceID == nil {
		return CreateBookingResult{}, domain.ValidationError{Field: "resourceId", Msg: "service requires a resource selection"}
	}

	start, err := parseStart(req.Date, req.Time)
	if err != nil {
		return CreateBookingResult{}, err
	}

	if tenant.RequirePhone && strings.TrimSpace(req.CustomerPhone) == "" {
		return CreateBookingResult{}, domain.ValidationError{Field: "customerPhone", Msg: "phone number required before booking"}
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return CreateBookingResult{}, domain.ValidationError{Field: "customerEmail", Msg: "email is required"}
	}

	now := s.now()
	if start.Before(now.Add(-pastStartTolerance)) {
		return CreateBookingResult{}, domain.ValidationError{Field: "time", Msg: "booking start is in the past"}
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		// no client key: generate one; replay protection then only covers
		// store-level retries, not client resubmits
		key = uuid.NewString()
	}
	if existing, err := s.BookingRepo.GetByIdempotencyKey(ctx, s.db(), tenant.ID, key); err == nil {
		return CreateBookingResult{Booking: existing, Replayed: true}, nil
	} else if !domain.IsNotFound(err) {
		return CreateBookingResult{}, err
	}

	end := start.Add(time.Duration(duration) * time.Minute)
	blackouts, err := s.BlackoutRepo.Overlapping(ctx, tenant.ID, start, end, repositories.BlackoutScope{
		ServiceID:  svc.ID,
		StaffID:    req.StaffID,
		ResourceID: req.ResourceID,
	})
	if err != nil {
		return CreateBookingResult{}, err
	}
	if len(blackouts) > 0 {
		return CreateBookingResult{}, domain.ConflictError{
			Resource: "blackout",
			Msg:      "requested time falls in a blackout window",
			Details:  blackouts,
		}
	}

	probe := ConflictProbe{
		TenantID:        tenant.ID,
		StaffID:         req.StaffID,
		ResourceID:      req.ResourceID,
		Start:           start,
		DurationMinutes: duration,
	}
	if pre, err := s.Checker.Check(ctx, s.db(), probe, false); err != nil {
		return CreateBookingResult{}, err
	} else if pre.Conflict {
		return CreateBookingResult{}, domain.ConflictError{
			Resource: "slot",
			Msg:      "time overlaps an existing booking",
			Details:  pre.Rows,
		}
	}

	status := models.BookingStatusConfirmed
	if svc.RequiresConfirmation {
		status = models.BookingStatusPending
	}

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return CreateBookingResult{}, repositories.MapStoreError(err)
	}
	defer tx.Rollback()

	customer, err := s.CustomerRepo.UpsertByEmail(ctx, tx, tenant.ID, req.CustomerName, req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		return CreateBookingResult{}, err
	}

	// The advisory pre-check above is racy by nature; this recheck holds
	// row locks on the competing rows until commit.
	locked, err := s.Checker.Check(ctx, tx, probe, true)
	if err != nil {
		return CreateBookingResult{}, err
	}
	if locked.Conflict {
		return CreateBookingResult{}, domain.ConflictError{
			Resource: "slot",
			Msg:      "time overlaps an existing booking",
			Details:  locked.Rows,
		}
	}

	booking := models.Booking{
		TenantID:        tenant.ID,
		ServiceID:       svc.ID,
		StaffID:         req.StaffID,
		ResourceID:      req.ResourceID,
		CustomerID:      customer.ID,
		StartTime:       start,
		DurationMinutes: duration,
		Status:          status,
		IdempotencyKey:  key,
		BookingCode:     newBookingCode(),
		Notes:           strings.TrimSpace(req.Notes),
	}

	id, err := s.BookingRepo.InsertTx(ctx, tx, booking)
	if err != nil {
		if repositories.IsDuplicate(err) {
			// concurrent replay of the same idempotency key; the first
			// insert wins and this request returns its row
			_ = tx.Rollback()
			existing, lookupErr := s.BookingRepo.GetByIdempotencyKey(ctx, s.db(), tenant.ID, key)
			if lookupErr != nil {
				return CreateBookingResult{}, lookupErr
			}
			return CreateBookingResult{Booking: existing, Replayed: true}, nil
		}
		return CreateBookingResult{}, repositories.MapStoreError(err)
	}
	booking.ID = id

	if req.UseMembership {
		debit, err := s.Membership.ConsumeTx(ctx, tx, tenant.ID, customer.ID, int64(duration), 1, id)
		if err != nil {
			return CreateBookingResult{}, err
		}
		booking.CustomerMembershipID = &debit.MembershipID
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET customer_membership_id=? WHERE id=?`, debit.MembershipID, id); err != nil {
			return CreateBookingResult{}, repositories.MapStoreError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return CreateBookingResult{}, repositories.MapStoreError(err)
	}

	// Best-effort: dashboards poll this marker. A failure here must never
	// fail the committed booking.
	utils.LogSwallowed(s.RequestID, "booking", "heartbeat", s.TenantRepo.TouchHeartbeat(ctx, tenant.ID))

	created, err := s.BookingRepo.GetByID(ctx, tenant.ID, id)
	if err != nil {
		// commit succeeded; fall back to what we already know
		booking.CreatedAt = now
		booking.UpdatedAt = now
		return CreateBookingResult{Booking: booking}, nil
	}
	return CreateBookingResult{Booking: created}, nil
}

// UpdateStatus applies the transition matrix. Same-state transitions are
// accepted as no-ops so retries stay idempotent.
func (s BookingService) UpdateStatus(ctx context.Context, tenantID, bookingID int64, next models.BookingStatus) (models.Booking, error) {
	if !models.ValidStatus(next) {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}

	b, err := s.BookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status == next {
		return b, nil
	}
	if !models.CanTransition(b.Status, next) {
		return models.Booking{}, domain.ConflictError{
			Resource: "booking status",
			Msg:      string(b.Status) + " cannot become " + string(next),
		}
	}

	applied, err := s.BookingRepo.UpdateStatusTx(ctx, s.db(), tenantID, bookingID, b.Status, next)
	if err != nil {
		return models.Booking{}, err
	}
	if !applied {
		// a concurrent writer moved the row between the read and the
		// guarded update; report against its actual state
		current, err := s.BookingRepo.GetByID(ctx, tenantID, bookingID)
		if err != nil {
			return models.Booking{}, err
		}
		if current.Status == next {
			return current, nil
		}
		return models.Booking{}, domain.ConflictError{
			Resource: "booking status",
			Msg:      string(current.Status) + " cannot become " + string(next),
		}
	}

	utils.LogSwallowed(s.RequestID, "booking", "heartbeat", s.TenantRepo.TouchHeartbeat(ctx, tenantID))

	b.Status = next
	b.UpdatedAt = s.now()
	return b, nil
}

func parseStart(date, clock string) (time.Time, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD"}
	}
	min, err := slotmath.ParseClock(clock)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: "time", Msg: "expected HH:MM"}
	}
	return day.Add(time.Duration(min) * time.Minute), nil
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
