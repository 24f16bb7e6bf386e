package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/cache"
	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService registration, login and token lifecycle
type UserAuthService struct {
	userRepo     repository.UserRepository
	loginLogRepo repository.UserLoginLogRepository
	jwtConf      config.JWTConfig
	securityConf config.SecurityConfig
}

// NewUserAuthService creates the auth service
func NewUserAuthService(
	userRepo repository.UserRepository,
	loginLogRepo repository.UserLoginLogRepository,
	jwtConf config.JWTConfig,
	securityConf config.SecurityConfig,
) *UserAuthService {
	return &UserAuthService{
		userRepo:     userRepo,
		loginLogRepo: loginLogRepo,
		jwtConf:      jwtConf,
		securityConf: securityConf,
	}
}

// AuthClaims JWT claims. TokenVersion is checked against the account on
// every request so a password change kills outstanding tokens.
type AuthClaims struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput registration input
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

// Register creates an account. Self-registration only covers customers and
// distributor owners; admin accounts are seeded.
func (s *UserAuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.RoleCustomer
	}
	if role != constants.RoleCustomer && role != constants.RoleDistributor {
		return nil, ErrRoleNotAllowed
	}
	if err := validatePassword(s.securityConf.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	phone := ""
	if strings.TrimSpace(input.Phone) != "" {
		phone, err = NormalizePhone(input.Phone)
		if err != nil {
			return nil, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Phone:        phone,
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// LoginInput login input
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	ClientIP   string
	UserAgent  string
}

// LoginResult issued token plus the account
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login authenticates by email and password and issues a JWT.
// Every attempt is logged, failures included.
func (s *UserAuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		s.logAttempt(nil, email, constants.LoginLogFailReasonBadRequest, input)
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logAttempt(nil, email, constants.LoginLogFailReasonInternalError, input)
		return nil, err
	}
	if user == nil {
		s.logAttempt(nil, email, constants.LoginLogFailReasonInvalidCredentials, input)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logAttempt(&user.ID, email, constants.LoginLogFailReasonInvalidCredentials, input)
		return nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		s.logAttempt(&user.ID, email, constants.LoginLogFailReasonUserDisabled, input)
		return nil, ErrUserDisabled
	}

	token, expiresAt, err := s.issueToken(user, input.RememberMe)
	if err != nil {
		s.logAttempt(&user.ID, email, constants.LoginLogFailReasonInternalError, input)
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		logger.Warnw("login_timestamp_update_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("auth_state_cache_write_failed", "user_id", user.ID, "error", err)
	}
	s.logSuccess(user, input)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserAuthService) issueToken(user *models.User, rememberMe bool) (string, time.Time, error) {
	expireHours := s.jwtConf.ExpireHours
	if rememberMe && s.jwtConf.RememberMeExpireHours > 0 {
		expireHours = s.jwtConf.RememberMeExpireHours
	}
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)

	claims := AuthClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConf.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseToken validates a JWT and returns its claims. Signature and expiry
// only; account-level checks happen in Authenticate.
func (s *UserAuthService) ParseToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrNotAuthenticated
		}
		return []byte(s.jwtConf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNotAuthenticated
	}
	claims, ok := token.Claims.(*AuthClaims)
	if !ok || claims.UserID == 0 {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}

// Authenticate resolves claims into a live auth state, consulting the cache
// before the database. Rejects stale token versions and disabled accounts.
func (s *UserAuthService) Authenticate(ctx context.Context, claims *AuthClaims) (*cache.UserAuthState, error) {
	if claims == nil || claims.UserID == 0 {
		return nil, ErrNotAuthenticated
	}
	state, hit, err := cache.GetUserAuthState(ctx, claims.UserID)
	if err != nil {
		logger.Warnw("auth_state_cache_read_failed", "user_id", claims.UserID, "error", err)
	}
	if !hit || state == nil {
		user, err := s.userRepo.GetByID(claims.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNotAuthenticated
		}
		state = cache.BuildUserAuthState(user)
		if err := cache.SetUserAuthState(ctx, state); err != nil {
			logger.Warnw("auth_state_cache_write_failed", "user_id", user.ID, "error", err)
		}
	}

	if state.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	if state.TokenVersion != claims.TokenVersion {
		return nil, ErrNotAuthenticated
	}
	if state.TokenInvalidBefore > 0 && claims.IssuedAt != nil &&
		claims.IssuedAt.Unix() < state.TokenInvalidBefore {
		return nil, ErrNotAuthenticated
	}
	return state, nil
}

// ChangePassword verifies the current password, saves the new hash and
// bumps the token version so every outstanding token dies.
func (s *UserAuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotAuthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.securityConf.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	user.PasswordHash = string(hash)
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(ctx, user.ID); err != nil {
		logger.Warnw("auth_state_cache_del_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// GetByID fetches an account
func (s *UserAuthService) GetByID(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile updates name and phone
func (s *UserAuthService) UpdateProfile(userID uint, name, phone string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		user.Name = trimmed
	}
	if strings.TrimSpace(phone) != "" {
		normalized, err := NormalizePhone(phone)
		if err != nil {
			return nil, err
		}
		user.Phone = normalized
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserStatus enables or disables an account (admin)
func (s *UserAuthService) SetUserStatus(ctx context.Context, userID uint, status string) error {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	user.Status = status
	if status == constants.UserStatusDisabled {
		now := time.Now()
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(ctx, user.ID); err != nil {
		logger.Warnw("auth_state_cache_del_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ListLoginLogs paginated login log listing (admin)
func (s *UserAuthService) ListLoginLogs(filter repository.UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	return s.loginLogRepo.List(filter)
}

func (s *UserAuthService) logSuccess(user *models.User, input LoginInput) {
	entry := &models.UserLoginLog{
		UserID:    &user.ID,
		Email:     user.Email,
		Status:    constants.LoginLogStatusSuccess,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
	}
	if err := s.loginLogRepo.Create(entry); err != nil {
		logger.Warnw("login_log_write_failed", "user_id", user.ID, "error", err)
	}
}

func (s *UserAuthService) logAttempt(userID *uint, email, reason string, input LoginInput) {
	entry := &models.UserLoginLog{
		UserID:     userID,
		Email:      email,
		Status:     constants.LoginLogStatusFailed,
		FailReason: reason,
		ClientIP:   input.ClientIP,
		UserAgent:  input.UserAgent,
	}
	if err := s.loginLogRepo.Create(entry); err != nil {
		logger.Warnw("login_log_write_failed", "email", email, "error", err)
	}
}
