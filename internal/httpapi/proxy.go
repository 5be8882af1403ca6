package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/audit"
	"becca-platform/internal/catalog"
	"becca-platform/internal/mailer"
	"becca-platform/internal/wallet"
)

// --- Catalog ---

func (h Handlers) ListProducts(c *gin.Context) {
	products, err := h.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h Handlers) PutProduct(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p.ID = c.Param("id")
	saved, err := h.Catalog.SaveProduct(c.Request.Context(), p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

type inventoryRequest struct {
	Quantity *int `json:"quantity"`
}

func (h Handlers) SetInventory(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	if err := h.Catalog.SetInventory(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("id"), "quantity": *req.Quantity})
}

// QueryInventory always answers 200: an empty inventory is an answer.
func (h Handlers) QueryInventory(c *gin.Context) {
	report, err := h.Catalog.QueryInventory(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- Search ---

type searchRequest struct {
	Query string `json:"query"`
}

func (h Handlers) WebSearch(c *gin.Context) {
	if h.Search == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "web search not configured (SEARCH_API_KEY)"})
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		badRequest(c, "query required")
		return
	}
	results, err := h.Search.Search(c.Request.Context(), req.Query)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// --- Email ---

type emailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (h Handlers) SendEmail(c *gin.Context) {
	if h.Mailer == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "email not configured (EMAIL_API_KEY)"})
		return
	}
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if len(req.To) == 0 || req.Subject == "" {
		badRequest(c, "to and subject required")
		return
	}
	id, err := h.Mailer.Send(c.Request.Context(), mailer.Email{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// --- Wallet ---

func (h Handlers) GetWalletBalance(c *gin.Context) {
	bal, err := h.Wallet.GetBalance(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// TopUpWallet credits the wallet. The caller supplies the idempotency key so
// a retried request posts at most one ledger entry.
func (h Handlers) TopUpWallet(c *gin.Context) {
	var req wallet.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	entry, bal, err := h.Wallet.Credit(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.recordAudit(c, audit.EventTypeWalletChange, fmt.Sprintf("wallet credited %d minor units", entry.AmountMinor))
	c.JSON(http.StatusOK, gin.H{"entry": entry, "balance": bal})
}
