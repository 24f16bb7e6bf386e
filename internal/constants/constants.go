package constants

// Order status constants (statuses are Portuguese, customer-facing)
const (
	OrderStatusNovo            = "novo"
	OrderStatusConfirmado      = "confirmado"
	OrderStatusPreparando      = "preparando"
	OrderStatusSaiuParaEntrega = "saiu_para_entrega"
	OrderStatusEntregue        = "entregue"
	OrderStatusCancelado       = "cancelado"
)

// Order type constants
const (
	OrderTypeImediato = "imediato"
	OrderTypeAgendado = "agendado"
)

// Payment method constants
const (
	PaymentMethodDinheiro = "dinheiro"
	PaymentMethodPix      = "pix"
	PaymentMethodCartao   = "cartao"
)

// User role constants
const (
	RoleAdmin       = "admin"
	RoleDistributor = "distributor"
	RoleCustomer    = "customer"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Loyalty redemption status constants
const (
	RedemptionStatusPending   = "pending"
	RedemptionStatusConfirmed = "confirmed"
	RedemptionStatusRejected  = "rejected"
)

// Subscription status constants (mirrors Stripe subscription statuses)
const (
	SubscriptionStatusActive            = "active"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusUnpaid            = "unpaid"
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
)

// Subscription plan constants
const (
	SubscriptionPlanMonthly = "monthly"
	SubscriptionPlanAnnual  = "annual"
)

// Stripe webhook event type constants
const (
	StripeEventCheckoutCompleted   = "checkout.session.completed"
	StripeEventSubscriptionCreated = "customer.subscription.created"
	StripeEventSubscriptionUpdated = "customer.subscription.updated"
	StripeEventSubscriptionDeleted = "customer.subscription.deleted"
	StripeEventInvoicePaid         = "invoice.paid"
	StripeEventInvoiceFailed       = "invoice.payment_failed"
)

// Login log status constants
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// Login log failure reason constants
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// Queue constants
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskOrderNotify         = "order:notify"
	TaskLoyaltyAccrue       = "loyalty:accrue"
	TaskSubscriptionRefresh = "subscription:refresh"
)

// Cache default constants
const (
	RedisPrefixDefault = "aqp"
)

// Brazil country calling code; stored WhatsApp numbers always carry it
const (
	PhoneCountryCode = "55"
)

// Weekday bounds for business hours (0 = Sunday .. 6 = Saturday)
const (
	WeekdayMin = 0
	WeekdayMax = 6
)

// Currency constants
const (
	SiteCurrencyDefault = "BRL"
)
