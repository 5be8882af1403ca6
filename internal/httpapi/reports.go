package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/reporting"
)

const defaultReportWindow = 7 * 24 * time.Hour

// parseRange reads from/to RFC3339 query params, defaulting to the last week.
func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	now := time.Now().UTC()
	r := reporting.TimeRange{From: now.Add(-defaultReportWindow), To: now}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "from must be RFC3339")
			return reporting.TimeRange{}, false
		}
		r.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "to must be RFC3339")
			return reporting.TimeRange{}, false
		}
		r.To = t
	}
	return r, true
}

func (h Handlers) CallsReport(c *gin.Context) {
	r, ok := parseRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.CallsSummary(c.Request.Context(), r)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h Handlers) SpendReport(c *gin.Context) {
	r, ok := parseRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.SpendSummary(c.Request.Context(), r)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
