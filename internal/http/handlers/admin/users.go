package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/gin-gonic/gin"
)

// UserStatusRequest account status change request
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"` // active / disabled
}

// SetUserStatus enables or disables an account. Disabling revokes every
// outstanding token.
func (h *Handler) SetUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	if err := h.UserAuthService.SetUserStatus(c.Request.Context(), uint(userID), strings.TrimSpace(req.Status)); err != nil {
		respondError(c, response.CodeBadRequest, "falha ao atualizar a conta", err)
		return
	}
	requestLog(c).Infow("admin_user_status_changed",
		"user_id", userID,
		"status", req.Status,
	)
	response.Success(c, gin.H{"status": req.Status})
}

// ListLoginLogs paginated login attempt history
func (h *Handler) ListLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.UserLoginLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Email:    strings.TrimSpace(c.Query("email")),
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if userID, err := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}

	logs, total, err := h.UserAuthService.ListLoginLogs(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar os acessos", err)
		return
	}
	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}
