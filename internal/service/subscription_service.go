package service

import (
	"context"
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/payment/stripe"
	"github.com/aquaponto/aquaponto/internal/repository"

	"gorm.io/gorm"
)

// Access gate decisions for a distributor storefront/dashboard
const (
	AccessGranted              = "granted"
	AccessOnboardingRequired   = "onboarding_required"
	AccessSubscriptionRequired = "subscription_required"
)

// SubscriptionService subscription billing and access gating
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	distributorRepo  repository.DistributorRepository
	stripeCfg        *stripe.Config
	planPrices       map[string]string // plan -> Stripe price ID
	enforced         bool
	graceDays        int
}

// NewSubscriptionService creates the subscription service
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	distributorRepo repository.DistributorRepository,
	stripeConf config.StripeConfig,
	subscriptionConf config.SubscriptionConfig,
) *SubscriptionService {
	cfg := &stripe.Config{
		SecretKey:               stripeConf.SecretKey,
		WebhookSecret:           stripeConf.WebhookSecret,
		SuccessURL:              stripeConf.SuccessURL,
		CancelURL:               stripeConf.CancelURL,
		PortalReturnURL:         stripeConf.PortalReturnURL,
		WebhookToleranceSeconds: stripeConf.ToleranceSeconds,
		TrialPeriodDays:         stripeConf.TrialPeriodDays,
		AllowPromotionCodes:     stripeConf.AllowPromotionCodes,
	}
	cfg.Normalize()
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		distributorRepo:  distributorRepo,
		stripeCfg:        cfg,
		planPrices: map[string]string{
			constants.SubscriptionPlanMonthly: strings.TrimSpace(stripeConf.MonthlyPriceID),
			constants.SubscriptionPlanAnnual:  strings.TrimSpace(stripeConf.AnnualPriceID),
		},
		enforced:  subscriptionConf.Enforced,
		graceDays: subscriptionConf.GraceDays,
	}
}

// AccessDecision gate evaluation result
type AccessDecision struct {
	Decision     string               `json:"decision"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// Evaluate runs the access gate for a distributor: onboarding first, then
// the subscription check. Onboarding wins when both are missing, so the
// distributor is never asked to pay before the profile exists.
func (s *SubscriptionService) Evaluate(distributorID uint, now time.Time) (*AccessDecision, error) {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return nil, err
	}
	if distributor == nil {
		return nil, ErrNotFound
	}
	if !distributor.OnboardingComplete() {
		return &AccessDecision{Decision: AccessOnboardingRequired}, nil
	}
	if !s.enforced {
		return &AccessDecision{Decision: AccessGranted}, nil
	}

	subscription, err := s.subscriptionRepo.GetByDistributorID(distributorID)
	if err != nil {
		return nil, err
	}
	if s.activeWithGrace(subscription, now) {
		return &AccessDecision{Decision: AccessGranted, Subscription: subscription}, nil
	}
	return &AccessDecision{Decision: AccessSubscriptionRequired, Subscription: subscription}, nil
}

// HasActiveSubscription reports whether the gate would grant access,
// onboarding aside. Used by the public order path.
func (s *SubscriptionService) HasActiveSubscription(distributorID uint, now time.Time) (bool, error) {
	if !s.enforced {
		return true, nil
	}
	subscription, err := s.subscriptionRepo.GetByDistributorID(distributorID)
	if err != nil {
		return false, err
	}
	return s.activeWithGrace(subscription, now), nil
}

// activeWithGrace applies the configured grace window on top of ActiveAt:
// a subscription past its period end still grants access for grace_days.
func (s *SubscriptionService) activeWithGrace(subscription *models.Subscription, now time.Time) bool {
	if subscription == nil {
		return false
	}
	if subscription.ActiveAt(now) {
		return true
	}
	if s.graceDays <= 0 {
		return false
	}
	if subscription.Status != constants.SubscriptionStatusActive && subscription.Status != constants.SubscriptionStatusPastDue {
		return false
	}
	if subscription.CurrentPeriodEnd == nil {
		return false
	}
	graceEnd := subscription.CurrentPeriodEnd.AddDate(0, 0, s.graceDays)
	return graceEnd.After(now)
}

// CreateCheckout starts a Stripe subscription checkout for a distributor.
// Plan is monthly or annual; blank defaults to monthly.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, distributorID uint, ownerEmail, plan string) (string, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		plan = constants.SubscriptionPlanMonthly
	}
	priceID, ok := s.planPrices[plan]
	if !ok {
		return "", ErrInvalidPlan
	}
	if priceID == "" || strings.TrimSpace(s.stripeCfg.SecretKey) == "" {
		return "", ErrStripeNotConfigured
	}
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return "", err
	}
	if distributor == nil {
		return "", ErrNotFound
	}
	if !distributor.OnboardingComplete() {
		return "", ErrOnboardingRequired
	}

	input := stripe.CheckoutInput{
		PriceID:       priceID,
		DistributorID: distributorID,
		CustomerEmail: strings.TrimSpace(ownerEmail),
	}
	existing, err := s.subscriptionRepo.GetByDistributorID(distributorID)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.StripeCustomerID != "" {
		input.CustomerID = existing.StripeCustomerID
	}

	result, err := stripe.CreateSubscriptionCheckout(ctx, s.stripeCfg, input)
	if err != nil {
		logger.Errorw("subscription_checkout_failed",
			"distributor_id", distributorID,
			"plan", plan,
			"error", err,
		)
		return "", err
	}
	return result.URL, nil
}

// CustomerPortal opens the Stripe billing portal for a subscribed distributor
func (s *SubscriptionService) CustomerPortal(ctx context.Context, distributorID uint) (string, error) {
	if strings.TrimSpace(s.stripeCfg.SecretKey) == "" {
		return "", ErrStripeNotConfigured
	}
	subscription, err := s.subscriptionRepo.GetByDistributorID(distributorID)
	if err != nil {
		return "", err
	}
	if subscription == nil || subscription.StripeCustomerID == "" {
		return "", ErrNotFound
	}
	result, err := stripe.CreatePortalSession(ctx, s.stripeCfg, subscription.StripeCustomerID)
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// HandleWebhook verifies and applies a Stripe webhook. Replayed event IDs
// are acknowledged without reapplying state. The dedup row and the state it
// guards commit together: a failed apply rolls the event row back, so the
// provider's redelivery of that event is treated as fresh, not as a replay.
func (s *SubscriptionService) HandleWebhook(headers map[string]string, body []byte, now time.Time) error {
	event, err := stripe.VerifyAndParseWebhook(s.stripeCfg, headers, body, now)
	if err != nil {
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.subscriptionRepo.WithTx(tx)
		fresh, err := repo.RecordWebhookEvent(&models.WebhookEvent{
			EventID:   event.EventID,
			EventType: event.EventType,
			Payload:   string(body),
		})
		if err != nil {
			return err
		}
		if !fresh {
			logger.Infow("subscription_webhook_replayed", "event_id", event.EventID)
			return nil
		}
		return s.applyEvent(repo, event)
	})
}

func (s *SubscriptionService) applyEvent(repo repository.SubscriptionRepository, event *stripe.WebhookEvent) error {
	switch event.EventType {
	case constants.StripeEventCheckoutCompleted:
		return s.applyCheckoutCompleted(repo, event)
	case constants.StripeEventSubscriptionCreated,
		constants.StripeEventSubscriptionUpdated,
		constants.StripeEventSubscriptionDeleted:
		return s.applySubscriptionState(repo, event)
	case constants.StripeEventInvoicePaid, constants.StripeEventInvoiceFailed:
		return s.applyInvoiceEvent(repo, event)
	default:
		logger.Debugw("subscription_webhook_ignored",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}
}

func (s *SubscriptionService) applyCheckoutCompleted(repo repository.SubscriptionRepository, event *stripe.WebhookEvent) error {
	if event.DistributorID == 0 {
		logger.Warnw("subscription_webhook_no_distributor", "event_id", event.EventID)
		return nil
	}
	subscription, err := repo.GetByDistributorID(event.DistributorID)
	if err != nil {
		return err
	}
	if subscription == nil {
		subscription = &models.Subscription{DistributorID: event.DistributorID}
	}
	if event.CustomerID != "" {
		subscription.StripeCustomerID = event.CustomerID
	}
	if event.SubscriptionID != "" {
		subscription.StripeSubscriptionID = event.SubscriptionID
	}
	if subscription.Status == "" {
		subscription.Status = constants.SubscriptionStatusIncomplete
	}
	return repo.Upsert(subscription)
}

func (s *SubscriptionService) applySubscriptionState(repo repository.SubscriptionRepository, event *stripe.WebhookEvent) error {
	state := event.Subscription
	if state == nil {
		return nil
	}
	subscription, err := s.resolveLocal(repo, event)
	if err != nil || subscription == nil {
		return err
	}
	s.applyRemoteState(subscription, state)
	if event.EventType == constants.StripeEventSubscriptionDeleted {
		subscription.Status = constants.SubscriptionStatusCanceled
		if subscription.CanceledAt == nil {
			now := time.Now()
			subscription.CanceledAt = &now
		}
	}
	return repo.Upsert(subscription)
}

func (s *SubscriptionService) applyInvoiceEvent(repo repository.SubscriptionRepository, event *stripe.WebhookEvent) error {
	subscription, err := s.resolveLocal(repo, event)
	if err != nil || subscription == nil {
		return err
	}
	switch event.EventType {
	case constants.StripeEventInvoicePaid:
		// period end comes from the next subscription.updated; paid invoice
		// only clears a past_due flag early
		if subscription.Status == constants.SubscriptionStatusPastDue {
			subscription.Status = constants.SubscriptionStatusActive
		}
	case constants.StripeEventInvoiceFailed:
		if subscription.Status == constants.SubscriptionStatusActive ||
			subscription.Status == constants.SubscriptionStatusTrialing {
			subscription.Status = constants.SubscriptionStatusPastDue
		}
	}
	return repo.Upsert(subscription)
}

// resolveLocal finds the local subscription row an event refers to,
// preferring the explicit distributor reference over the Stripe IDs.
func (s *SubscriptionService) resolveLocal(repo repository.SubscriptionRepository, event *stripe.WebhookEvent) (*models.Subscription, error) {
	if event.DistributorID != 0 {
		subscription, err := repo.GetByDistributorID(event.DistributorID)
		if err != nil {
			return nil, err
		}
		if subscription != nil {
			return subscription, nil
		}
		return &models.Subscription{DistributorID: event.DistributorID}, nil
	}
	if event.SubscriptionID != "" {
		subscription, err := repo.GetByStripeSubscriptionID(event.SubscriptionID)
		if err != nil || subscription != nil {
			return subscription, err
		}
	}
	if event.CustomerID != "" {
		return repo.GetByStripeCustomerID(event.CustomerID)
	}
	logger.Warnw("subscription_webhook_unmatched", "event_id", event.EventID)
	return nil, nil
}

func (s *SubscriptionService) applyRemoteState(subscription *models.Subscription, state *stripe.SubscriptionState) {
	if state.SubscriptionID != "" {
		subscription.StripeSubscriptionID = state.SubscriptionID
	}
	if plan := s.planForPrice(state.PriceID); plan != "" {
		subscription.Plan = plan
	}
	if state.CustomerID != "" {
		subscription.StripeCustomerID = state.CustomerID
	}
	if state.Status != "" {
		subscription.Status = state.Status
	}
	if state.StartedAt != nil {
		subscription.StartedAt = state.StartedAt
	}
	if state.CurrentPeriodEnd != nil {
		subscription.CurrentPeriodEnd = state.CurrentPeriodEnd
	}
	if state.CanceledAt != nil {
		subscription.CanceledAt = state.CanceledAt
	}
}

// planForPrice maps a Stripe price ID back to the local plan name.
func (s *SubscriptionService) planForPrice(priceID string) string {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return ""
	}
	for plan, configured := range s.planPrices {
		if configured != "" && configured == priceID {
			return plan
		}
	}
	return ""
}

// RefreshSubscription pulls the remote state of one distributor's
// subscription and reconciles the local row. Used by the periodic worker
// as a safety net for missed webhooks.
func (s *SubscriptionService) RefreshSubscription(ctx context.Context, distributorID uint) error {
	if strings.TrimSpace(s.stripeCfg.SecretKey) == "" {
		return ErrStripeNotConfigured
	}
	subscription, err := s.subscriptionRepo.GetByDistributorID(distributorID)
	if err != nil {
		return err
	}
	if subscription == nil || subscription.StripeSubscriptionID == "" {
		return nil
	}
	state, err := stripe.GetSubscription(ctx, s.stripeCfg, subscription.StripeSubscriptionID)
	if err != nil {
		return err
	}
	s.applyRemoteState(subscription, state)
	return s.subscriptionRepo.Upsert(subscription)
}

// ListRefreshCandidates returns distributor IDs whose subscription rows
// should be reconciled against Stripe.
func (s *SubscriptionService) ListRefreshCandidates() ([]uint, error) {
	statuses := []string{
		constants.SubscriptionStatusActive,
		constants.SubscriptionStatusTrialing,
		constants.SubscriptionStatusPastDue,
	}
	seen := map[uint]struct{}{}
	ids := make([]uint, 0)
	for _, status := range statuses {
		rows, err := s.subscriptionRepo.ListByStatus(status)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, ok := seen[row.DistributorID]; ok {
				continue
			}
			seen[row.DistributorID] = struct{}{}
			ids = append(ids, row.DistributorID)
		}
	}
	return ids, nil
}

// GetByDistributor returns the local subscription row of a distributor
func (s *SubscriptionService) GetByDistributor(distributorID uint) (*models.Subscription, error) {
	return s.subscriptionRepo.GetByDistributorID(distributorID)
}

// CountByStatus aggregates subscription counts for the admin dashboard
func (s *SubscriptionService) CountByStatus() (map[string]int64, error) {
	return s.subscriptionRepo.CountByStatus()
}

// Enforced reports whether the gate is turned on
func (s *SubscriptionService) Enforced() bool {
	return s.enforced
}
