package distributor

import (
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// OnboardRequest distributor onboarding request
type OnboardRequest struct {
	TradeName     string `json:"trade_name" binding:"required"`
	CorporateName string `json:"corporate_name"`
	CNPJ          string `json:"cnpj" binding:"required"`
	WhatsApp      string `json:"whatsapp" binding:"required"`
	CEP           string `json:"cep" binding:"required"`
	Number        string `json:"number"`
	Complement    string `json:"complement"`
}

// Onboard creates the distributor profile for the logged-in owner
func (h *Handler) Onboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	distributor, err := h.DistributorService.Onboard(c.Request.Context(), userID, service.OnboardInput{
		TradeName:     req.TradeName,
		CorporateName: req.CorporateName,
		CNPJ:          req.CNPJ,
		WhatsApp:      req.WhatsApp,
		CEP:           req.CEP,
		Number:        req.Number,
		Complement:    req.Complement,
	})
	if err != nil {
		respondWithMappedError(c, err, onboardErrorRules, response.CodeInternal, "falha ao cadastrar a distribuidora")
		return
	}
	response.Success(c, distributor)
}

// GetProfile returns the logged-in owner's distributor profile
func (h *Handler) GetProfile(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	response.Success(c, distributor)
}

// UpdateProfileRequest profile update request. CNPJ and slug are immutable.
type UpdateProfileRequest struct {
	TradeName     string `json:"trade_name"`
	CorporateName string `json:"corporate_name"`
	WhatsApp      string `json:"whatsapp"`
	LogoURL       string `json:"logo_url"`
	CEP           string `json:"cep"`
	Number        string `json:"number"`
	Complement    string `json:"complement"`
}

// UpdateProfile updates the distributor profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	updated, err := h.DistributorService.UpdateProfile(c.Request.Context(), distributor.ID, service.UpdateProfileInput{
		TradeName:     req.TradeName,
		CorporateName: req.CorporateName,
		WhatsApp:      req.WhatsApp,
		LogoURL:       req.LogoURL,
		CEP:           req.CEP,
		Number:        req.Number,
		Complement:    req.Complement,
	})
	if err != nil {
		respondWithMappedError(c, err, onboardErrorRules, response.CodeInternal, "falha ao atualizar a distribuidora")
		return
	}
	response.Success(c, updated)
}

// SetActiveRequest storefront visibility toggle
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetActive toggles the storefront on or off
func (h *Handler) SetActive(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	if err := h.DistributorService.SetActive(distributor.ID, *req.IsActive); err != nil {
		respondError(c, response.CodeInternal, "falha ao atualizar a distribuidora", err)
		return
	}
	requestLog(c).Infow("distributor_active_toggled",
		"distributor_id", distributor.ID,
		"is_active", *req.IsActive,
	)
	response.Success(c, gin.H{"is_active": *req.IsActive})
}
