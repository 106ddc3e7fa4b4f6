package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carrental-backend/internal/handlers"
	"carrental-backend/internal/middleware"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Limiter        *middleware.IPRateLimiter
	Health         Pinger
	Log            logger.ILogger
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opt Options) {
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(opt.Log))
	r.Use(middleware.CORSMiddleware(opt.AllowedOrigins...))

	r.GET("/ping", func(c *gin.Context) {
		if opt.Health != nil {
			if err := opt.Health.Ping(c.Request.Context()); err != nil {
				utils.APIResponse(c, http.StatusServiceUnavailable, false, "database unreachable", nil)
				return
			}
		}
		utils.APIResponse(c, http.StatusOK, true, "Server OK!", nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// gateway callbacks are not throttled per IP
	pay := api.Group("/payments")
	{
		pay.GET("/return", h.PaymentReturn)
		pay.POST("/momo/ipn", h.MoMoIPN)
		pay.POST("/payos/webhook", h.PayOSWebhook)
		pay.POST("/midtrans/notification", h.MidtransNotification)
	}

	public := api.Group("/")
	if opt.Limiter != nil {
		public.Use(middleware.RateLimitMiddleware(opt.Limiter))
	}
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		public.GET("/cars", h.ListCars)
		public.GET("/cars/:id", h.GetCar)
		public.GET("/cars/:id/booked-ranges", h.BookedRanges)
		public.POST("/cars/:id/quote", h.Quote)
		public.GET("/cars/:id/feedback", h.CarFeedback)
		public.GET("/locations", h.ListLocations)
	}

	protected := public.Group("/")
	protected.Use(middleware.AuthMiddleware(opt.JWTSecret))
	{
		protected.GET("/profile", h.GetProfile)

		protected.POST("/orders", h.CreateOrder)
		protected.GET("/orders", h.ListMyOrders)
		protected.GET("/orders/:id", h.GetOrder)
		protected.GET("/orders/:id/countdown", h.OrderCountdown)
		protected.POST("/orders/:id/cancel", h.CancelOrder)
		protected.POST("/orders/:id/payments", h.InitiatePayment)
		protected.GET("/orders/:id/payments", h.ListOrderPayments)
		protected.POST("/orders/:id/feedback", h.SubmitFeedback)

		protected.GET("/payments", h.ListMyPayments)

		protected.GET("/documents", h.MyDocuments)
		protected.PUT("/documents/driver-license", h.PutDriverLicense)
		protected.PUT("/documents/citizen-id", h.PutCitizenID)

		staff := protected.Group("/staff")
		staff.Use(middleware.StaffOnly())
		{
			staff.GET("/orders", h.ListOrders)
			staff.GET("/orders/:id/actions", h.OrderActions)
			staff.POST("/orders/:id/confirm-deposit", h.ConfirmDeposit)
			staff.POST("/orders/:id/check-in", h.CheckIn)
			staff.POST("/orders/:id/delivery", h.RecordDelivery)
			staff.POST("/orders/:id/return", h.RecordReturn)
			staff.POST("/orders/:id/fees", h.UpdateFees)
			staff.POST("/orders/:id/confirm-total", h.ConfirmTotal)
			staff.POST("/orders/:id/confirm-payment", h.ConfirmPayment)
			staff.POST("/orders/:id/refund", h.RefundDeposit)
			staff.POST("/orders/:id/cancel", h.StaffCancelOrder)
			staff.GET("/documents/:user_id", h.UserDocuments)
			staff.POST("/documents/:user_id/verify", h.VerifyDocuments)
		}
	}
}
