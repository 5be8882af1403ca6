package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/history"
	"becca-platform/internal/llm"
)

const chatChannel = "dashboard"

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	// Stream defaults to true; "stream": false asks for one JSON reply
	// instead of SSE.
	Stream *bool `json:"stream,omitempty"`
}

// Chat answers a dashboard message. The default is SSE with deltas as they
// arrive from the gateway; a client that cannot consume event streams sends
// "stream": false and gets the full reply as JSON. Either way the user turn
// and the assistant reply are persisted.
func (h Handlers) Chat(c *gin.Context) {
	if h.LLM == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat gateway not configured (LLM_API_KEY)"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message required")
		return
	}
	ctx := c.Request.Context()

	conv, err := h.resolveConversation(c, req)
	if err != nil {
		respondErr(c, err)
		return
	}

	prior, err := h.History.ListMessages(ctx, conv.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if _, err := h.History.AppendMessage(ctx, conv.ID, "user", req.Message); err != nil {
		respondErr(c, err)
		return
	}

	msgs, err := h.buildChatMessages(c, prior, req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}

	if req.Stream != nil && !*req.Stream {
		reply, err := h.LLM.Complete(ctx, msgs)
		if err != nil {
			respondErr(c, err)
			return
		}
		if _, err := h.History.AppendMessage(ctx, conv.ID, "assistant", reply); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID, "reply": reply})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	var reply strings.Builder
	streamErr := h.LLM.Stream(ctx, msgs, func(delta string) error {
		reply.WriteString(delta)
		c.SSEvent("delta", delta)
		c.Writer.Flush()
		return nil
	})
	if streamErr != nil {
		if reply.Len() == 0 {
			// Nothing streamed yet; a clean HTTP status is still possible.
			respondErr(c, streamErr)
			return
		}
		c.SSEvent("error", "stream interrupted")
		c.Writer.Flush()
		return
	}

	if _, err := h.History.AppendMessage(ctx, conv.ID, "assistant", reply.String()); err != nil {
		c.SSEvent("error", "history write failed")
		c.Writer.Flush()
		return
	}
	c.SSEvent("done", gin.H{"conversation_id": conv.ID})
	c.Writer.Flush()
}

func (h Handlers) resolveConversation(c *gin.Context, req chatRequest) (history.Conversation, error) {
	if req.ConversationID != "" {
		return history.Conversation{ID: req.ConversationID}, nil
	}
	return h.History.StartConversation(c.Request.Context(), chatChannel, req.Message)
}

func (h Handlers) buildChatMessages(c *gin.Context, prior []history.Message, userMsg string) ([]llm.Message, error) {
	system, err := h.Settings.SystemPrompt(c.Request.Context())
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, 0, len(prior)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: system})
	for _, m := range prior {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: userMsg})
	return msgs, nil
}

func (h Handlers) ListConversations(c *gin.Context) {
	convs, err := h.History.ListConversations(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h Handlers) ListMessages(c *gin.Context) {
	msgs, err := h.History.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
