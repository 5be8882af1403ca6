package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"becca-platform/internal/auth"
	"becca-platform/internal/httpapi"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authManager *auth.Manager) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks (public).
	// NOTE: protect with vendor signature validation before exposing publicly.
	r.POST("/webhooks/voice/events", h.VoiceEvent)

	v1 := r.Group("/v1")

	// Token issuance (public).
	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/refresh", h.Refresh)

	// Everything else requires an access token.
	api := v1.Group("")
	api.Use(auth.RequireAccessToken(authManager))

	ownerOnly := auth.RequireRole(auth.RoleOwner)
	anyRole := auth.RequireRole(auth.RoleOwner, auth.RoleStaff)

	// Channel toggles.
	api.GET("/channels", anyRole, h.ListChannels)
	api.PUT("/channels/master", ownerOnly, h.SetMasterToggle)
	api.PUT("/channels/:channel", ownerOnly, h.SetChannelToggle)
	api.GET("/channels/:channel/enabled", anyRole, h.ChannelEnabled)
	api.GET("/channels/:channel/connection", anyRole, h.GetChannelConnection)
	api.PUT("/channels/:channel/connection", ownerOnly, h.PutChannelConnection)

	// Business customization & personality.
	api.GET("/customization", anyRole, h.GetCustomization)
	api.PUT("/customization", ownerOnly, h.PutCustomization)
	api.GET("/personality", anyRole, h.GetPersonality)
	api.POST("/personality", ownerOnly, h.PostPersonality)

	// Voice assistant.
	api.PUT("/assistant/prompt", ownerOnly, h.PutAssistantPrompt)
	api.GET("/assistant/voices", anyRole, h.ListVoices)
	api.PUT("/assistant/voice", ownerOnly, h.PutAssistantVoice)
	api.POST("/voice/clone", ownerOnly, h.CloneVoice)
	api.DELETE("/voice/clone/:voice_id", ownerOnly, h.DeleteClonedVoice)

	// Outbound calls.
	api.POST("/calls/schedule", ownerOnly, h.ScheduleCall)
	api.GET("/calls/scheduled", anyRole, h.ListScheduledCalls)
	api.POST("/calls/start", ownerOnly, h.StartCall)
	api.POST("/calls/:id/end", ownerOnly, h.EndCall)
	api.GET("/calls/history", anyRole, h.ListCallHistory)
	api.GET("/calls/:id/transcript", anyRole, h.GetCallTranscript)

	// Dashboard chat.
	api.POST("/chat", anyRole, h.Chat)
	api.GET("/conversations", anyRole, h.ListConversations)
	api.GET("/conversations/:id/messages", anyRole, h.ListMessages)

	// Catalog.
	api.GET("/products", anyRole, h.ListProducts)
	api.PUT("/products/:id", ownerOnly, h.PutProduct)
	api.PUT("/inventory/:id", ownerOnly, h.SetInventory)
	api.GET("/inventory/query", anyRole, h.QueryInventory)

	// Proxies.
	api.POST("/search", anyRole, h.WebSearch)
	api.POST("/email/send", ownerOnly, h.SendEmail)

	// Wallet.
	api.GET("/wallet/balance", anyRole, h.GetWalletBalance)
	api.POST("/wallet/topup", ownerOnly, h.TopUpWallet)

	// Reports.
	api.GET("/reports/calls", ownerOnly, h.CallsReport)
	api.GET("/reports/spend", ownerOnly, h.SpendReport)

	// Ops: run one dispatcher pass on demand.
	internal := r.Group("/internal")
	internal.Use(auth.RequireAccessToken(authManager), ownerOnly)
	internal.POST("/dispatch/run", h.RunDispatch)
}
