package public

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a service error onto an API response
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

var orderSubmitErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: service.ErrInvalidOrderItem.Error()},
	{target: service.ErrProductUnavailable, code: response.CodeBadRequest, msg: service.ErrProductUnavailable.Error()},
	{target: service.ErrSchedulingRequired, code: response.CodeSchedulingRequired, msg: service.ErrSchedulingRequired.Error()},
	{target: service.ErrAuthRequired, code: response.CodeUnauthorized, msg: service.ErrAuthRequired.Error()},
	{target: service.ErrInvalidScheduleDate, code: response.CodeBadRequest, msg: service.ErrInvalidScheduleDate.Error()},
	{target: service.ErrInvalidScheduleSlot, code: response.CodeBadRequest, msg: service.ErrInvalidScheduleSlot.Error()},
	{target: service.ErrDistributorUnavailable, code: response.CodeDistributorUnavailable, msg: service.ErrDistributorUnavailable.Error()},
	{target: service.ErrInvalidPaymentMethod, code: response.CodeBadRequest, msg: service.ErrInvalidPaymentMethod.Error()},
	{target: service.ErrInvalidPhone, code: response.CodeBadRequest, msg: service.ErrInvalidPhone.Error()},
}

var orderTrackErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: service.ErrOrderNotFound.Error()},
	{target: service.ErrInvalidPhone, code: response.CodeBadRequest, msg: service.ErrInvalidPhone.Error()},
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: service.ErrInvalidEmail.Error()},
	{target: service.ErrEmailExists, code: response.CodeConflict, msg: service.ErrEmailExists.Error()},
	{target: service.ErrRoleNotAllowed, code: response.CodeBadRequest, msg: service.ErrRoleNotAllowed.Error()},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest, msg: service.ErrPasswordTooWeak.Error()},
	{target: service.ErrInvalidPhone, code: response.CodeBadRequest, msg: service.ErrInvalidPhone.Error()},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: service.ErrInvalidCredentials.Error()},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, msg: service.ErrUserDisabled.Error()},
}

var changePasswordErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, msg: service.ErrInvalidPassword.Error()},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest, msg: service.ErrPasswordTooWeak.Error()},
	{target: service.ErrNotAuthenticated, code: response.CodeUnauthorized, msg: service.ErrNotAuthenticated.Error()},
}

var loyaltyRedeemErrorRules = []mappedHandlerError{
	{target: service.ErrLoyaltyProgramDisabled, code: response.CodeBadRequest, msg: service.ErrLoyaltyProgramDisabled.Error()},
	{target: service.ErrInsufficientPoints, code: response.CodeInsufficientPoints, msg: service.ErrInsufficientPoints.Error()},
	{target: service.ErrNotAuthenticated, code: response.CodeUnauthorized, msg: service.ErrNotAuthenticated.Error()},
}

func respondOrderSubmitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderSubmitErrorRules, response.CodeInternal, "falha ao criar o pedido")
}

func respondOrderTrackError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderTrackErrorRules, response.CodeInternal, "falha ao consultar o pedido")
}
