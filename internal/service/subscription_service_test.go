package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/payment/stripe"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	testWebhookSecret  = "whsec_test"
	testMonthlyPriceID = "price_monthly_123"
	testAnnualPriceID  = "price_annual_123"
)

func setupSubscriptionTest(t *testing.T, subscriptionConf config.SubscriptionConfig) (*SubscriptionService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.Subscription{}, &models.WebhookEvent{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db
	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewDistributorRepository(db),
		config.StripeConfig{
			WebhookSecret:  testWebhookSecret,
			MonthlyPriceID: testMonthlyPriceID,
			AnnualPriceID:  testAnnualPriceID,
		},
		subscriptionConf,
	)
	return svc, db
}

func createTestDistributor(t *testing.T, db *gorm.DB, onboarded bool) *models.Distributor {
	t.Helper()
	distributor := &models.Distributor{
		UserID:    1,
		TradeName: "Água Azul",
		CNPJ:      "11444777000161",
		Slug:      "agua-azul",
		WhatsApp:  "5585999110001",
		IsActive:  true,
	}
	if onboarded {
		now := time.Now()
		distributor.OnboardingCompletedAt = &now
	}
	if err := db.Create(distributor).Error; err != nil {
		t.Fatalf("create distributor failed: %v", err)
	}
	return distributor
}

func stripeSignedHeaders(t *testing.T, body []byte, at time.Time) map[string]string {
	t.Helper()
	timestamp := at.Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10) + "." + string(body)))
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil))),
	}
}

func TestEvaluateOnboardingWinsOverSubscription(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, false)

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessOnboardingRequired {
		t.Fatalf("want onboarding_required got %s", decision.Decision)
	}
}

func TestEvaluateMissingSubscription(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessSubscriptionRequired {
		t.Fatalf("want subscription_required got %s", decision.Decision)
	}
}

func TestEvaluateNotEnforcedAlwaysGrants(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: false})
	distributor := createTestDistributor(t, db, true)

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessGranted {
		t.Fatalf("want granted got %s", decision.Decision)
	}
}

func TestEvaluateActiveSubscriptionGrants(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().Add(15 * 24 * time.Hour)
	if err := db.Create(&models.Subscription{
		DistributorID:    distributor.ID,
		Status:           constants.SubscriptionStatusActive,
		CurrentPeriodEnd: &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessGranted {
		t.Fatalf("want granted got %s", decision.Decision)
	}
	if decision.Subscription == nil {
		t.Fatal("granted decision must carry the subscription")
	}
}

func TestEvaluateExpiryOverridesActiveStatus(t *testing.T) {
	// status still says active but the period ended: without grace the
	// stale row must not grant access
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true, GraceDays: 0})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().Add(-time.Hour)
	if err := db.Create(&models.Subscription{
		DistributorID:    distributor.ID,
		Status:           constants.SubscriptionStatusActive,
		CurrentPeriodEnd: &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessSubscriptionRequired {
		t.Fatalf("want subscription_required got %s", decision.Decision)
	}
}

func TestEvaluateGraceWindowExtendsAccess(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true, GraceDays: 3})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().AddDate(0, 0, -1) // expired yesterday, inside grace
	if err := db.Create(&models.Subscription{
		DistributorID:    distributor.ID,
		Status:           constants.SubscriptionStatusPastDue,
		CurrentPeriodEnd: &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessGranted {
		t.Fatalf("inside grace window want granted got %s", decision.Decision)
	}

	// past the grace window the gate closes
	stale := time.Now().AddDate(0, 0, 5)
	decision, err = svc.Evaluate(distributor.ID, stale)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessSubscriptionRequired {
		t.Fatalf("past grace window want subscription_required got %s", decision.Decision)
	}
}

func TestEvaluateGraceNeverRevivesCanceled(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true, GraceDays: 3})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().AddDate(0, 0, -1)
	if err := db.Create(&models.Subscription{
		DistributorID:    distributor.ID,
		Status:           constants.SubscriptionStatusCanceled,
		CurrentPeriodEnd: &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	decision, err := svc.Evaluate(distributor.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Decision != AccessSubscriptionRequired {
		t.Fatalf("canceled subscription want subscription_required got %s", decision.Decision)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, _ := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	body := []byte(`{"id":"evt_bad","type":"invoice.paid","data":{"object":{"object":"invoice"}}}`)
	headers := map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"}
	if err := svc.HandleWebhook(headers, body, time.Now()); !errors.Is(err, stripe.ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid got %v", err)
	}
}

func TestHandleWebhookCheckoutCompletedCreatesSubscription(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	body := []byte(fmt.Sprintf(`{
		"id": "evt_checkout_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"object": "checkout.session",
			"customer": "cus_abc",
			"subscription": "sub_abc",
			"client_reference_id": "%d"
		}}
	}`, distributor.ID))
	now := time.Now()
	if err := svc.HandleWebhook(stripeSignedHeaders(t, body, now), body, now); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}

	subscription, err := svc.GetByDistributor(distributor.ID)
	if err != nil {
		t.Fatalf("get subscription failed: %v", err)
	}
	if subscription == nil {
		t.Fatal("subscription row not created")
	}
	if subscription.StripeCustomerID != "cus_abc" || subscription.StripeSubscriptionID != "sub_abc" {
		t.Fatalf("stripe references not stored: %+v", subscription)
	}
	if subscription.Status != constants.SubscriptionStatusIncomplete {
		t.Fatalf("initial status want incomplete got %s", subscription.Status)
	}
}

func TestHandleWebhookReplayIsIgnored(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_sub_1",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"object": "subscription",
			"id": "sub_xyz",
			"customer": "cus_xyz",
			"status": "active",
			"metadata": {"distributor_id": "%d"},
			"current_period_end": %d
		}}
	}`, distributor.ID, periodEnd))
	now := time.Now()
	headers := stripeSignedHeaders(t, body, now)

	if err := svc.HandleWebhook(headers, body, now); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.HandleWebhook(headers, body, now); err != nil {
		t.Fatalf("replay must be acknowledged, got %v", err)
	}

	var eventCount int64
	if err := db.Model(&models.WebhookEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("event rows want 1 got %d", eventCount)
	}

	subscription, err := svc.GetByDistributor(distributor.ID)
	if err != nil || subscription == nil {
		t.Fatalf("subscription not stored: %v", err)
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		t.Fatalf("status want active got %s", subscription.Status)
	}
}

func TestHandleWebhookInvoiceTransitions(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().Add(10 * 24 * time.Hour)
	if err := db.Create(&models.Subscription{
		DistributorID:        distributor.ID,
		Status:               constants.SubscriptionStatusActive,
		StripeCustomerID:     "cus_inv",
		StripeSubscriptionID: "sub_inv",
		CurrentPeriodEnd:     &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	failed := []byte(`{
		"id": "evt_inv_fail",
		"type": "invoice.payment_failed",
		"data": {"object": {"object": "invoice", "customer": "cus_inv", "subscription": "sub_inv"}}
	}`)
	now := time.Now()
	if err := svc.HandleWebhook(stripeSignedHeaders(t, failed, now), failed, now); err != nil {
		t.Fatalf("handle failed invoice: %v", err)
	}
	subscription, _ := svc.GetByDistributor(distributor.ID)
	if subscription.Status != constants.SubscriptionStatusPastDue {
		t.Fatalf("after failed invoice want past_due got %s", subscription.Status)
	}

	paid := []byte(`{
		"id": "evt_inv_paid",
		"type": "invoice.paid",
		"data": {"object": {"object": "invoice", "customer": "cus_inv", "subscription": "sub_inv"}}
	}`)
	if err := svc.HandleWebhook(stripeSignedHeaders(t, paid, now), paid, now); err != nil {
		t.Fatalf("handle paid invoice: %v", err)
	}
	subscription, _ = svc.GetByDistributor(distributor.ID)
	if subscription.Status != constants.SubscriptionStatusActive {
		t.Fatalf("after paid invoice want active got %s", subscription.Status)
	}
}

func TestHandleWebhookSubscriptionDeleted(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)
	periodEnd := time.Now().Add(10 * 24 * time.Hour)
	if err := db.Create(&models.Subscription{
		DistributorID:        distributor.ID,
		Status:               constants.SubscriptionStatusActive,
		StripeSubscriptionID: "sub_del",
		CurrentPeriodEnd:     &periodEnd,
	}).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	body := []byte(`{
		"id": "evt_sub_del",
		"type": "customer.subscription.deleted",
		"data": {"object": {"object": "subscription", "id": "sub_del", "customer": "cus_del", "status": "canceled"}}
	}`)
	now := time.Now()
	if err := svc.HandleWebhook(stripeSignedHeaders(t, body, now), body, now); err != nil {
		t.Fatalf("handle deleted failed: %v", err)
	}

	subscription, _ := svc.GetByDistributor(distributor.ID)
	if subscription.Status != constants.SubscriptionStatusCanceled {
		t.Fatalf("status want canceled got %s", subscription.Status)
	}
	if subscription.CanceledAt == nil {
		t.Fatal("canceled_at must be set")
	}
}

func TestCreateCheckoutRequiresConfiguration(t *testing.T) {
	// webhook secret alone is not enough; checkout needs the secret key
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	if _, err := svc.CreateCheckout(nil, distributor.ID, "dono@example.com", constants.SubscriptionPlanMonthly); !errors.Is(err, ErrStripeNotConfigured) {
		t.Fatalf("want ErrStripeNotConfigured got %v", err)
	}
}

func TestCreateCheckoutRejectsUnknownPlan(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	if _, err := svc.CreateCheckout(nil, distributor.ID, "dono@example.com", "weekly"); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("unknown plan: want ErrInvalidPlan got %v", err)
	}
}

func TestHandleWebhookSubscriptionCreated(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_sub_created",
		"type": "customer.subscription.created",
		"data": {"object": {
			"object": "subscription",
			"id": "sub_new",
			"customer": "cus_new",
			"status": "active",
			"metadata": {"distributor_id": "%d"},
			"current_period_end": %d
		}}
	}`, distributor.ID, periodEnd))
	now := time.Now()
	if err := svc.HandleWebhook(stripeSignedHeaders(t, body, now), body, now); err != nil {
		t.Fatalf("handle created failed: %v", err)
	}

	subscription, err := svc.GetByDistributor(distributor.ID)
	if err != nil {
		t.Fatalf("get subscription failed: %v", err)
	}
	if subscription == nil {
		t.Fatal("created event must materialize the local row")
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		t.Fatalf("status want active got %s", subscription.Status)
	}
	if subscription.StripeSubscriptionID != "sub_new" {
		t.Fatalf("subscription id not stored: %+v", subscription)
	}
}

func TestHandleWebhookStoresPlanFromPrice(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	periodEnd := time.Now().Add(365 * 24 * time.Hour).Unix()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_sub_plan",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"object": "subscription",
			"id": "sub_plan",
			"customer": "cus_plan",
			"status": "active",
			"metadata": {"distributor_id": "%d"},
			"items": {"data": [{"price": {"id": "%s"}}]},
			"current_period_end": %d
		}}
	}`, distributor.ID, testAnnualPriceID, periodEnd))
	now := time.Now()
	if err := svc.HandleWebhook(stripeSignedHeaders(t, body, now), body, now); err != nil {
		t.Fatalf("handle updated failed: %v", err)
	}

	subscription, err := svc.GetByDistributor(distributor.ID)
	if err != nil || subscription == nil {
		t.Fatalf("subscription not stored: %v", err)
	}
	if subscription.Plan != constants.SubscriptionPlanAnnual {
		t.Fatalf("plan want annual got %q", subscription.Plan)
	}
}

func TestHandleWebhookRetryAfterFailedApply(t *testing.T) {
	svc, db := setupSubscriptionTest(t, config.SubscriptionConfig{Enforced: true})
	distributor := createTestDistributor(t, db, true)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_sub_retry",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"object": "subscription",
			"id": "sub_retry",
			"customer": "cus_retry",
			"status": "active",
			"metadata": {"distributor_id": "%d"},
			"current_period_end": %d
		}}
	}`, distributor.ID, periodEnd))
	now := time.Now()
	headers := stripeSignedHeaders(t, body, now)

	// first delivery dies mid-apply; the event must not be marked processed
	if err := db.Migrator().DropTable(&models.Subscription{}); err != nil {
		t.Fatalf("drop table failed: %v", err)
	}
	if err := svc.HandleWebhook(headers, body, now); err == nil {
		t.Fatal("apply against a broken store must fail")
	}
	var eventCount int64
	if err := db.Model(&models.WebhookEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 0 {
		t.Fatalf("failed delivery must not leave an event row, found %d", eventCount)
	}

	// the provider redelivers; now it must apply, not be dropped as a replay
	if err := db.AutoMigrate(&models.Subscription{}); err != nil {
		t.Fatalf("restore table failed: %v", err)
	}
	if err := svc.HandleWebhook(headers, body, now); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	subscription, err := svc.GetByDistributor(distributor.ID)
	if err != nil || subscription == nil {
		t.Fatalf("redelivery did not apply state: %v", err)
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		t.Fatalf("status want active got %s", subscription.Status)
	}
	if err := db.Model(&models.WebhookEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("event rows want 1 got %d", eventCount)
	}
}
