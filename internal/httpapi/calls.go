package httpapi

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/audit"
	"becca-platform/internal/voice"
	"becca-platform/internal/wallet"
	"becca-platform/pkg/logger"
)

// --- Scheduled calls ---

type scheduleRequest struct {
	TargetNumber string    `json:"target_number"`
	Purpose      string    `json:"purpose"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

func (h Handlers) ScheduleCall(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	call, err := h.Dispatcher.Schedule(c.Request.Context(), req.TargetNumber, req.Purpose, req.ScheduledAt)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeCallScheduled, "call scheduled to "+call.TargetNumber)
	c.JSON(http.StatusOK, call)
}

func (h Handlers) ListScheduledCalls(c *gin.Context) {
	calls, err := h.Dispatcher.ListScheduled(c.Request.Context(), 100)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls})
}

// RunDispatch triggers one dispatcher pass on demand. The periodic runner
// covers normal operation; this endpoint exists for ops and tests.
func (h Handlers) RunDispatch(c *gin.Context) {
	n, err := h.Dispatcher.RunPass(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": n})
}

// --- Manual calls ---

type startCallRequest struct {
	TargetNumber string `json:"target_number"`
	Purpose      string `json:"purpose"`
}

// StartCall places an immediate outbound call, bypassing the scheduler.
// It is gated on a positive wallet balance; the charge itself lands when
// the vendor reports call end.
func (h Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetNumber == "" {
		badRequest(c, "target_number required")
		return
	}
	ctx := c.Request.Context()

	if err := h.Wallet.RequireFunds(ctx); err != nil {
		respondErr(c, err)
		return
	}

	numbers, err := h.Voice.ListPhoneNumbers(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	if len(numbers) == 0 {
		respondErr(c, voice.ErrNotFound)
		return
	}

	prompt, err := h.Settings.SystemPrompt(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	if req.Purpose != "" {
		prompt = prompt + "\n\nThe purpose of this call: " + req.Purpose
	}

	call, err := h.Voice.CreateCall(ctx, voice.CallRequest{
		AssistantID:          h.AssistantID,
		PhoneNumberID:        numbers[0].ID,
		CustomerNumber:       req.TargetNumber,
		SystemPromptOverride: prompt,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h Handlers) EndCall(c *gin.Context) {
	callID := c.Param("id")
	if callID == "" {
		badRequest(c, "call id required")
		return
	}
	if err := h.Voice.EndCall(c.Request.Context(), callID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": callID})
}

// --- Voice vendor webhook ---

type voiceEventRequest struct {
	Type       string `json:"type"`
	CallID     string `json:"call_id"`
	Transcript string `json:"transcript"`

	// Cost is the vendor-reported call cost in major units (dollars). Some
	// vendor plans omit it; DurationSeconds then drives our own rating.
	Cost            float64 `json:"cost"`
	DurationSeconds int     `json:"duration_seconds"`
}

const eventEndOfCall = "end-of-call-report"

// VoiceEvent ingests vendor webhooks. Only end-of-call reports carry work:
// store the transcript and post the call charge. The debit is keyed on the
// provider call id, so vendor retries post at most once.
func (h Handlers) VoiceEvent(c *gin.Context) {
	var req voiceEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Type != eventEndOfCall {
		c.JSON(http.StatusOK, gin.H{"ignored": req.Type})
		return
	}
	if req.CallID == "" {
		badRequest(c, "call_id required")
		return
	}
	ctx := c.Request.Context()
	log := logger.From(ctx)

	if req.Transcript != "" {
		if err := h.History.SaveTranscript(ctx, req.CallID, req.Transcript); err != nil {
			respondErr(c, err)
			return
		}
	}

	amountMinor := int64(math.Round(req.Cost * 100))
	if amountMinor == 0 && req.DurationSeconds > 0 && h.Pricing != nil {
		cost, err := h.Pricing.RateCall(req.DurationSeconds)
		if err == nil {
			amountMinor = cost.TotalMinor
		}
	}

	if amountMinor > 0 {
		_, _, err := h.Wallet.Debit(ctx, wallet.DebitRequest{
			AmountMinor:    amountMinor,
			ExternalRef:    req.CallID,
			IdempotencyKey: req.CallID,
		})
		if err != nil {
			// The transcript is already stored; an uncollectible charge is an
			// ops problem, not a reason to make the vendor retry forever.
			log.Error("call charge failed", "call_id", req.CallID, "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"processed": req.CallID})
}

func (h Handlers) ListCallHistory(c *gin.Context) {
	records, err := h.History.ListCallHistory(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": records})
}

// GetCallTranscript returns the stored transcript for a provider call id.
func (h Handlers) GetCallTranscript(c *gin.Context) {
	tr, err := h.History.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}
