package distributor

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var onboardErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCNPJ, code: response.CodeBadRequest, msg: service.ErrInvalidCNPJ.Error()},
	{target: service.ErrCNPJExists, code: response.CodeConflict, msg: service.ErrCNPJExists.Error()},
	{target: service.ErrInvalidCEP, code: response.CodeBadRequest, msg: service.ErrInvalidCEP.Error()},
	{target: service.ErrCEPNotFound, code: response.CodeBadRequest, msg: service.ErrCEPNotFound.Error()},
	{target: service.ErrInvalidPhone, code: response.CodeBadRequest, msg: service.ErrInvalidPhone.Error()},
	{target: service.ErrSlugExists, code: response.CodeConflict, msg: service.ErrSlugExists.Error()},
	{target: service.ErrNotFound, code: response.CodeBadRequest, msg: "dados da distribuidora incompletos"},
}

var hoursErrorRules = []mappedHandlerError{
	{target: service.ErrIncompleteWeek, code: response.CodeBadRequest, msg: service.ErrIncompleteWeek.Error()},
	{target: service.ErrInvalidWeekday, code: response.CodeBadRequest, msg: service.ErrInvalidWeekday.Error()},
	{target: service.ErrInvalidTimeSpan, code: response.CodeBadRequest, msg: service.ErrInvalidTimeSpan.Error()},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "nome e preço positivo são obrigatórios"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "produto não encontrado"},
}

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidDiscountTier, code: response.CodeBadRequest, msg: service.ErrInvalidDiscountTier.Error()},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "faixa de desconto não encontrada"},
}

var orderStatusErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: service.ErrOrderNotFound.Error()},
	{target: service.ErrInvalidStatusChange, code: response.CodeBadRequest, msg: service.ErrInvalidStatusChange.Error()},
}

var subscriptionErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidPlan, code: response.CodeBadRequest, msg: service.ErrInvalidPlan.Error()},
	{target: service.ErrStripeNotConfigured, code: response.CodeInternal, msg: service.ErrStripeNotConfigured.Error()},
	{target: service.ErrOnboardingRequired, code: response.CodeOnboardingRequired, msg: service.ErrOnboardingRequired.Error()},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "assinatura não encontrada"},
}

var uploadErrorRules = []mappedHandlerError{
	{target: service.ErrUploadTooLarge, code: response.CodeBadRequest, msg: service.ErrUploadTooLarge.Error()},
	{target: service.ErrUploadInvalidType, code: response.CodeBadRequest, msg: service.ErrUploadInvalidType.Error()},
}

var loyaltyProgramErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidLoyaltyProgram, code: response.CodeBadRequest, msg: service.ErrInvalidLoyaltyProgram.Error()},
}
