package distributor

import (
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/gin-gonic/gin"
)

// GetHours returns the weekly schedule
func (h *Handler) GetHours(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	hours, err := h.DistributorService.GetHours(distributor.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar os horários", err)
		return
	}
	response.Success(c, hours)
}

// BusinessHourRequest one weekday of the schedule
type BusinessHourRequest struct {
	Weekday  int    `json:"weekday"`
	IsOpen   bool   `json:"is_open"`
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
}

// ReplaceHoursRequest full weekly schedule replacement
type ReplaceHoursRequest struct {
	Hours []BusinessHourRequest `json:"hours" binding:"required"`
}

// ReplaceHours validates and saves the full weekly schedule
func (h *Handler) ReplaceHours(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req ReplaceHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	hours := make([]models.BusinessHour, 0, len(req.Hours))
	for _, hour := range req.Hours {
		hours = append(hours, models.BusinessHour{
			DistributorID: distributor.ID,
			Weekday:       hour.Weekday,
			IsOpen:        hour.IsOpen,
			OpensAt:       hour.OpensAt,
			ClosesAt:      hour.ClosesAt,
		})
	}
	if err := h.DistributorService.ReplaceHours(distributor.ID, hours); err != nil {
		respondWithMappedError(c, err, hoursErrorRules, response.CodeInternal, "falha ao salvar os horários")
		return
	}
	response.Success(c, gin.H{"saved": true})
}
