package public

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/gateway/viacep"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// CEPLookup resolves a CEP into an address for checkout autofill
func (h *Handler) CEPLookup(c *gin.Context) {
	cep, err := service.NormalizeCEP(c.Param("cep"))
	if err != nil {
		respondError(c, response.CodeBadRequest, service.ErrInvalidCEP.Error(), nil)
		return
	}

	address, err := h.ViaCEPClient.Lookup(c.Request.Context(), cep)
	if err != nil {
		switch {
		case errors.Is(err, viacep.ErrInvalidCEP):
			respondError(c, response.CodeBadRequest, service.ErrInvalidCEP.Error(), nil)
		case errors.Is(err, viacep.ErrCEPNotFound):
			respondError(c, response.CodeNotFound, "CEP não encontrado", nil)
		default:
			respondError(c, response.CodeInternal, "falha ao consultar o CEP", err)
		}
		return
	}
	response.Success(c, address)
}
