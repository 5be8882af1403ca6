package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/audit"
	"becca-platform/internal/auth"
	"becca-platform/internal/catalog"
	"becca-platform/internal/channels"
	"becca-platform/internal/dispatch"
	"becca-platform/internal/history"
	"becca-platform/internal/llm"
	"becca-platform/internal/mailer"
	"becca-platform/internal/pricing"
	"becca-platform/internal/reporting"
	"becca-platform/internal/search"
	"becca-platform/internal/settings"
	"becca-platform/internal/speech"
	"becca-platform/internal/voice"
	"becca-platform/internal/wallet"
	"becca-platform/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Channels *channels.Service
	Settings *settings.Service
	Catalog  *catalog.Service
	History  *history.Service
	Wallet   *wallet.Service
	Pricing  *pricing.Service
	Audit    *audit.Service
	Reports  *reporting.Service

	Voice       voice.Provider
	AssistantID string
	Speech      speech.Cloner
	LLM         llm.Gateway
	Search      search.Searcher
	Mailer      mailer.Sender

	Dispatcher *dispatch.Dispatcher
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.UserID == "" || !auth.ValidRole(auth.Role(req.Role)) {
		badRequest(c, "user_id and a valid role required")
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, auth.Role(req.Role))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		badRequest(c, "refresh_token required")
		return
	}
	pair, err := h.Auth.Refresh(time.Now(), req.RefreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// recordAudit logs an owner action. Best-effort: a failed audit write is
// warned about, never surfaced to the caller.
func (h Handlers) recordAudit(c *gin.Context, typ audit.EventType, message string) {
	if h.Audit == nil {
		return
	}
	ctx := c.Request.Context()
	uid, _ := auth.UserID(ctx)
	role, _ := auth.RoleFrom(ctx)
	if err := h.Audit.LogOwnerAction(ctx, typ, uid, string(role), message, ""); err != nil {
		logger.From(ctx).Warn("audit write failed", "type", string(typ), "err", err)
	}
}

// --- Channels ---

func (h Handlers) ListChannels(c *gin.Context) {
	toggles, err := h.Channels.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": toggles})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h Handlers) SetMasterToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		badRequest(c, "enabled required")
		return
	}
	t, err := h.Channels.SetMaster(c.Request.Context(), *req.Enabled)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeChannelToggle, fmt.Sprintf("master set to %t", *req.Enabled))
	c.JSON(http.StatusOK, t)
}

func (h Handlers) SetChannelToggle(c *gin.Context) {
	ch := channels.Channel(c.Param("channel"))
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		badRequest(c, "enabled required")
		return
	}
	t, err := h.Channels.SetChannel(c.Request.Context(), ch, *req.Enabled)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeChannelToggle, fmt.Sprintf("%s set to %t", ch, *req.Enabled))
	c.JSON(http.StatusOK, t)
}

func (h Handlers) ChannelEnabled(c *gin.Context) {
	ch := channels.Channel(c.Param("channel"))
	if !channels.ValidChannel(ch) {
		badRequest(c, "unknown channel")
		return
	}
	on, err := h.Channels.IsEnabled(c.Request.Context(), ch)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": ch, "enabled": on})
}

type connectionRequest struct {
	WebhookURL string `json:"webhook_url"`
	ExternalID string `json:"external_id"`
}

func (h Handlers) GetChannelConnection(c *gin.Context) {
	conn, err := h.Channels.GetConnection(c.Request.Context(), channels.Channel(c.Param("channel")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h Handlers) PutChannelConnection(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	conn, err := h.Channels.SetConnection(c.Request.Context(), channels.Connection{
		Channel:    channels.Channel(c.Param("channel")),
		WebhookURL: req.WebhookURL,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeChannelConnect, fmt.Sprintf("%s connection updated", conn.Channel))
	c.JSON(http.StatusOK, conn)
}

// --- Customization & personality ---

func (h Handlers) GetCustomization(c *gin.Context) {
	cust, err := h.Settings.GetCustomization(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h Handlers) PutCustomization(c *gin.Context) {
	var cust settings.Customization
	if err := c.ShouldBindJSON(&cust); err != nil {
		badRequest(c, "invalid json")
		return
	}
	saved, err := h.Settings.SaveCustomization(c.Request.Context(), cust)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeCustomization, "customization updated")
	c.JSON(http.StatusOK, saved)
}

func (h Handlers) GetPersonality(c *gin.Context) {
	p, ok, err := h.Settings.LatestPersonality(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"personality": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personality": p})
}

type personalityRequest struct {
	Text string `json:"text"`
}

// PostPersonality appends a personality row and pushes the recomposed system
// prompt to the voice assistant. The vendor push is best-effort: dashboard
// state is the source of truth and the dispatcher re-syncs every pass.
func (h Handlers) PostPersonality(c *gin.Context) {
	var req personalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := h.Settings.AddPersonality(c.Request.Context(), req.Text)
	if err != nil {
		respondErr(c, err)
		return
	}

	synced := h.syncAssistantPrompt(c)
	h.recordAudit(c, audit.EventTypePersonality, "personality appended")
	c.JSON(http.StatusOK, gin.H{"personality": p, "assistant_synced": synced})
}

func (h Handlers) syncAssistantPrompt(c *gin.Context) bool {
	if h.Voice == nil {
		return false
	}
	prompt, err := h.Settings.SystemPrompt(c.Request.Context())
	if err != nil {
		return false
	}
	if _, err := h.Voice.UpdateAssistantPrompt(c.Request.Context(), h.AssistantID, prompt); err != nil {
		return false
	}
	return true
}

// --- Assistant ---

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// PutAssistantPrompt pushes a system prompt to the voice assistant. An empty
// prompt means "recompose from stored personality + customization". Either
// way the vendor update is a merge: tools and voice survive.
func (h Handlers) PutAssistantPrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	prompt := req.Prompt
	if prompt == "" {
		var err error
		prompt, err = h.Settings.SystemPrompt(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
	}
	a, err := h.Voice.UpdateAssistantPrompt(c.Request.Context(), h.AssistantID, prompt)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeAssistantChange, "assistant prompt updated")
	c.JSON(http.StatusOK, a)
}

func (h Handlers) ListVoices(c *gin.Context) {
	voices, err := h.Voice.ListVoices(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": voices})
}

type voiceRequest struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voice_id"`
}

func (h Handlers) PutAssistantVoice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VoiceID == "" {
		badRequest(c, "voice_id required")
		return
	}
	a, err := h.Voice.UpdateAssistantVoice(c.Request.Context(), h.AssistantID, voice.VoiceSettings{
		Provider: req.Provider,
		VoiceID:  req.VoiceID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeAssistantChange, "assistant voice set to "+req.VoiceID)
	c.JSON(http.StatusOK, a)
}

// --- Voice cloning ---

// CloneVoice accepts a multipart form with a "name" field and a "sample"
// audio file, and returns the vendor voice id.
func (h Handlers) CloneVoice(c *gin.Context) {
	if h.Speech == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "speech cloning not configured (SPEECH_API_KEY)"})
		return
	}
	name := c.PostForm("name")
	if name == "" {
		badRequest(c, "name required")
		return
	}
	fh, err := c.FormFile("sample")
	if err != nil {
		badRequest(c, "sample file required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondErr(c, err)
		return
	}
	defer f.Close()

	voiceID, err := h.Speech.AddVoice(c.Request.Context(), name, f, fh.Filename)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voice_id": voiceID})
}

func (h Handlers) DeleteClonedVoice(c *gin.Context) {
	if h.Speech == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "speech cloning not configured (SPEECH_API_KEY)"})
		return
	}
	voiceID := c.Param("voice_id")
	if voiceID == "" {
		badRequest(c, "voice_id required")
		return
	}
	if err := h.Speech.DeleteVoice(c.Request.Context(), voiceID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": voiceID})
}
