package repository

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository subscription and webhook event data access interface
type SubscriptionRepository interface {
	GetByDistributorID(distributorID uint) (*models.Subscription, error)
	GetByStripeCustomerID(customerID string) (*models.Subscription, error)
	GetByStripeSubscriptionID(subscriptionID string) (*models.Subscription, error)
	Upsert(subscription *models.Subscription) error
	ListByStatus(status string) ([]models.Subscription, error)
	CountByStatus() (map[string]int64, error)
	RecordWebhookEvent(event *models.WebhookEvent) (bool, error)
	WithTx(tx *gorm.DB) *GormSubscriptionRepository
}

// GormSubscriptionRepository GORM implementation
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates the subscription repository
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// WithTx binds a transaction
func (r *GormSubscriptionRepository) WithTx(tx *gorm.DB) *GormSubscriptionRepository {
	if tx == nil {
		return r
	}
	return &GormSubscriptionRepository{db: tx}
}

// GetByDistributorID fetches the subscription of a distributor
func (r *GormSubscriptionRepository) GetByDistributorID(distributorID uint) (*models.Subscription, error) {
	if distributorID == 0 {
		return nil, nil
	}
	var subscription models.Subscription
	if err := r.db.Where("distributor_id = ?", distributorID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// GetByStripeCustomerID fetches a subscription by Stripe customer ID
func (r *GormSubscriptionRepository) GetByStripeCustomerID(customerID string) (*models.Subscription, error) {
	if customerID == "" {
		return nil, nil
	}
	var subscription models.Subscription
	if err := r.db.Where("stripe_customer_id = ?", customerID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// GetByStripeSubscriptionID fetches a subscription by Stripe subscription ID
func (r *GormSubscriptionRepository) GetByStripeSubscriptionID(subscriptionID string) (*models.Subscription, error) {
	if subscriptionID == "" {
		return nil, nil
	}
	var subscription models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", subscriptionID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// Upsert creates or updates the single subscription row of a distributor
func (r *GormSubscriptionRepository) Upsert(subscription *models.Subscription) error {
	if subscription == nil || subscription.DistributorID == 0 {
		return nil
	}
	existing, err := r.GetByDistributorID(subscription.DistributorID)
	if err != nil {
		return err
	}
	if existing != nil {
		subscription.ID = existing.ID
		subscription.CreatedAt = existing.CreatedAt
	}
	return r.db.Save(subscription).Error
}

// ListByStatus lists subscriptions in a given status
func (r *GormSubscriptionRepository) ListByStatus(status string) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	query := r.db.Model(&models.Subscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// CountByStatus aggregates subscription counts per status
func (r *GormSubscriptionRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Subscription{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RecordWebhookEvent inserts the event row, returning false when the
// provider event ID was already recorded (idempotent replay).
func (r *GormSubscriptionRepository) RecordWebhookEvent(event *models.WebhookEvent) (bool, error) {
	if event == nil || event.EventID == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.WebhookEvent{}).
		Where("event_id = ?", event.EventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := r.db.Create(event).Error; err != nil {
		return false, err
	}
	return true, nil
}
