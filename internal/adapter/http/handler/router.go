package handler

import (
	"experience-gift-fulfillment/internal/adapter/http/middleware"
	"experience-gift-fulfillment/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Verifier       ports.SignatureVerifier
	Decoder        ports.EventDecoder
	FulfillmentSvc ports.FulfillmentService
	EventLogSvc    ports.EventLogService // nil = receipts disabled
	TokenSvc       ports.TokenService    // nil = ops API disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Webhook ingress (signature-authenticated inside the handler) ---
	webhookHandler := NewWebhookHandler(deps.Verifier, deps.Decoder, deps.FulfillmentSvc, deps.EventLogSvc, deps.Logger)
	v1.POST("/webhooks/payment", webhookHandler.Receive)

	// --- Ops follow-up endpoints (JWT-authenticated) ---
	if deps.TokenSvc != nil {
		opsAuth := middleware.OpsAuth(deps.TokenSvc, deps.Logger)
		opsHandler := NewOpsHandler(deps.FulfillmentSvc)
		ops := v1.Group("/ops", opsAuth)
		{
			ops.GET("/orders/:reference", opsHandler.GetOrder)
			ops.POST("/notifications/resend", opsHandler.ResendNotification)
		}
	}

	return r
}
