package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"studio-backend/internal/handler/api"
	"studio-backend/internal/handler/middleware"
	"studio-backend/internal/pkg/config"
	"studio-backend/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth         *api.AuthHandler
	Availability *api.AvailabilityHandler
	Booking      *api.BookingHandler
	Schedule     *api.ScheduleHandler
	Coupon       *api.CouponHandler
	Plan         *api.PlanHandler
	Faq          *api.FaqHandler
	Chat         *api.ChatHandler
	Webhook      *api.WebhookHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) {
	setupMiddleware(engine, cfg, m)
	setupRoutes(engine, h, authMiddleware, m)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.MetricsMiddleware(m))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Processor callbacks authenticate with a shared token, not a session.
	engine.POST("/webhooks/payments", h.Webhook.HandlePaymentEvent)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/availability", Handler: h.Availability.MonthGrid},
			{Method: http.MethodGet, Path: "/faq", Handler: h.Faq.ListPublished},
			{Method: http.MethodGet, Path: "/plans", Handler: h.Plan.ListPlans},
		})

		customer := apiGroup.Group("")
		customer.Use(authMiddleware.RequireAuth())
		{
			addRoutes(customer, []route{
				{Method: http.MethodPost, Path: "/bookings", Handler: h.Booking.CreateBooking},
				{Method: http.MethodGet, Path: "/bookings", Handler: h.Booking.ListMyBookings},
				{Method: http.MethodGet, Path: "/bookings/:id", Handler: h.Booking.GetBooking},
				{Method: http.MethodPost, Path: "/bookings/:id/cancel", Handler: h.Booking.CancelBooking},

				{Method: http.MethodGet, Path: "/coupons", Handler: h.Coupon.ListMyCoupons},
				{Method: http.MethodPost, Path: "/coupons/redeem", Handler: h.Coupon.Redeem},

				{Method: http.MethodPost, Path: "/plans/subscribe", Handler: h.Plan.Subscribe},
				{Method: http.MethodGet, Path: "/plans/subscriptions", Handler: h.Plan.ListMySubscriptions},
				{Method: http.MethodPost, Path: "/plans/subscriptions/:id/cancel", Handler: h.Plan.CancelSubscription},

				{Method: http.MethodGet, Path: "/chat", Handler: h.Chat.MyThread},
				{Method: http.MethodPost, Path: "/chat/messages", Handler: h.Chat.PostMessage},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPut, Path: "/bookings/:id/status", Handler: h.Booking.SetBookingStatus},

				{Method: http.MethodPost, Path: "/schedule/slots/toggle", Handler: h.Schedule.ToggleSlot},
				{Method: http.MethodPost, Path: "/schedule/days/toggle", Handler: h.Schedule.ToggleDay},

				{Method: http.MethodGet, Path: "/faq", Handler: h.Faq.ListAll},
				{Method: http.MethodPost, Path: "/faq", Handler: h.Faq.Create},
				{Method: http.MethodPut, Path: "/faq/:id", Handler: h.Faq.Update},
				{Method: http.MethodDelete, Path: "/faq/:id", Handler: h.Faq.Delete},

				{Method: http.MethodGet, Path: "/chat/threads", Handler: h.Chat.ListThreads},
				{Method: http.MethodGet, Path: "/chat/threads/:id", Handler: h.Chat.GetThread},
				{Method: http.MethodPost, Path: "/chat/reply", Handler: h.Chat.AgentReply},
				{Method: http.MethodPut, Path: "/chat/mode", Handler: h.Chat.SetMode},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
