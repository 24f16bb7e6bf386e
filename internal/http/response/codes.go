package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500

	// domain codes
	CodeSchedulingRequired     = 1001
	CodeDistributorUnavailable = 1002
	CodeInsufficientPoints     = 1003
	CodeSubscriptionRequired   = 1004
	CodeOnboardingRequired     = 1005
)
