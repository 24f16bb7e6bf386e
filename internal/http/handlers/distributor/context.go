package distributor

import (
	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// requireDistributor resolves the tenant of the logged-in owner. The
// subscription gate middleware caches the ID in the context; routes outside
// the gate fall back to a lookup.
func (h *Handler) requireDistributor(c *gin.Context) (*models.Distributor, bool) {
	if id, ok := c.Get("distributor_id"); ok {
		if distributorID, ok := id.(uint); ok && distributorID != 0 {
			distributor, err := h.DistributorService.GetByID(distributorID)
			if err != nil {
				respondError(c, response.CodeInternal, "falha ao carregar a distribuidora", err)
				return nil, false
			}
			if distributor != nil {
				return distributor, true
			}
		}
	}

	userID, ok := getUserID(c)
	if !ok {
		return nil, false
	}
	distributor, err := h.DistributorService.GetByUserID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar a distribuidora", err)
		return nil, false
	}
	if distributor == nil {
		respondError(c, response.CodeOnboardingRequired, "complete o cadastro da distribuidora", nil)
		return nil, false
	}
	return distributor, true
}
