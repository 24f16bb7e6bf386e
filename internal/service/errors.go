package service

import "errors"

// common service errors
var (
	ErrNotFound = errors.New("registro não encontrado")
)

// auth errors
var (
	ErrInvalidEmail       = errors.New("email inválido")
	ErrEmailExists        = errors.New("email já cadastrado")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidPassword    = errors.New("senha atual incorreta")
	ErrUserDisabled       = errors.New("conta desativada")
	ErrNotAuthenticated   = errors.New("autenticação necessária")
	ErrRoleNotAllowed     = errors.New("perfil sem permissão")
	ErrPasswordTooWeak    = errors.New("senha não atende à política")
)

// validation errors
var (
	ErrInvalidCNPJ  = errors.New("CNPJ inválido")
	ErrCNPJExists   = errors.New("CNPJ já cadastrado")
	ErrInvalidCEP   = errors.New("CEP inválido")
	ErrCEPNotFound  = errors.New("CEP não encontrado")
	ErrInvalidPhone = errors.New("telefone inválido")
	ErrSlugExists   = errors.New("identificador já em uso")
)

// business hours errors
var (
	ErrInvalidWeekday  = errors.New("dia da semana inválido")
	ErrInvalidTimeSpan = errors.New("horário de abertura deve ser anterior ao fechamento")
	ErrIncompleteWeek  = errors.New("agenda semanal deve cobrir os sete dias")
)

// order errors
var (
	ErrInvalidOrderItem       = errors.New("item de pedido inválido")
	ErrProductUnavailable     = errors.New("produto indisponível")
	ErrSchedulingRequired     = errors.New("distribuidora fechada, agende a entrega")
	ErrAuthRequired           = errors.New("login necessário para pedidos agendados")
	ErrInvalidScheduleDate    = errors.New("data de agendamento deve ser futura")
	ErrInvalidScheduleSlot    = errors.New("horário de agendamento indisponível")
	ErrDistributorUnavailable = errors.New("distribuidora indisponível")
	ErrInvalidPaymentMethod   = errors.New("forma de pagamento inválida")
	ErrInvalidStatusChange    = errors.New("transição de status inválida")
	ErrOrderNotFound          = errors.New("pedido não encontrado")
)

// loyalty errors
var (
	ErrLoyaltyProgramDisabled = errors.New("programa de fidelidade desativado")
	ErrInsufficientPoints     = errors.New("pontos insuficientes")
	ErrInvalidLoyaltyProgram  = errors.New("configuração de fidelidade inválida")
)

// subscription errors
var (
	ErrSubscriptionRequired = errors.New("assinatura ativa necessária")
	ErrOnboardingRequired   = errors.New("complete o cadastro da distribuidora")
	ErrStripeNotConfigured  = errors.New("integração de cobrança não configurada")
	ErrInvalidPlan          = errors.New("plano de assinatura inválido")
)

// discount rule errors
var (
	ErrInvalidDiscountTier = errors.New("faixa de desconto inválida")
)

// upload errors
var (
	ErrUploadTooLarge    = errors.New("arquivo excede o tamanho máximo")
	ErrUploadInvalidType = errors.New("tipo de arquivo não permitido")
)
