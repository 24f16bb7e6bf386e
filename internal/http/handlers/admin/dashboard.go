package admin

import (
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Dashboard marketplace overview for a time window (defaults to the last
// 30 days)
func (h *Handler) Dashboard(c *gin.Context) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			respondError(c, response.CodeBadRequest, "data inicial inválida", nil)
			return
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			respondError(c, response.CodeBadRequest, "data final inválida", nil)
			return
		}
		to = parsed.AddDate(0, 0, 1) // inclusive end date
	}
	if to.Before(from) {
		respondError(c, response.CodeBadRequest, "intervalo de datas inválido", nil)
		return
	}

	overview, err := h.DashboardService.GetOverview(from, to)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao montar o painel", err)
		return
	}
	response.Success(c, overview)
}
