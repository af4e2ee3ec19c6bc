package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "bookingcore/internal/config"
	h "bookingcore/internal/http/handlers"
	"bookingcore/internal/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	admin := middleware.RequireAuth([]byte(env.JWTSecret), "admin", "owner")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)

		// Availability (public booking widget)
		api.GET("/availability", h.GetAvailability)

		// Tenants
		api.GET("/tenants/:slug/heartbeat", h.GetTenantHeartbeat)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", admin, h.UpdateBookingStatus)
		bookings.POST("/:id/cancel", admin, h.CancelBooking)

		// Customer memberships
		memberships := api.Group("/customer-memberships")
		memberships.POST("", admin, h.GrantMembership)
		memberships.POST("/consume-next", admin, h.ConsumeNextMembership)
		memberships.GET("", h.ListMemberships)
		memberships.GET("/:id/ledger", h.GetMembershipLedger)

		// Printable day sheet
		api.GET("/day-sheet", admin, h.GetDaySheet)
	}

	h.SetRouter(r)
	return r
}
