package public

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/provider"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const webhookTestSecret = "whsec_handler"

func setupWebhookTest(t *testing.T) (*gin.Engine, *gorm.DB, *models.Distributor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.Subscription{}, &models.WebhookEvent{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	now := time.Now()
	distributor := &models.Distributor{
		UserID:                1,
		TradeName:             "Água Azul",
		CNPJ:                  "11444777000161",
		Slug:                  "agua-azul",
		WhatsApp:              "5585999110001",
		IsActive:              true,
		OnboardingCompletedAt: &now,
	}
	if err := db.Create(distributor).Error; err != nil {
		t.Fatalf("create distributor failed: %v", err)
	}

	handler := New(&provider.Container{
		SubscriptionService: service.NewSubscriptionService(
			repository.NewSubscriptionRepository(db),
			repository.NewDistributorRepository(db),
			config.StripeConfig{WebhookSecret: webhookTestSecret},
			config.SubscriptionConfig{Enforced: true},
		),
	})
	r := gin.New()
	r.POST("/webhooks/stripe", handler.StripeWebhook)
	return r, db, distributor
}

func signWebhookBody(t *testing.T, body []byte, at time.Time) string {
	t.Helper()
	timestamp := at.Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10) + "." + string(body)))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func subscriptionUpdatedBody(distributorID uint) []byte {
	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	return []byte(fmt.Sprintf(`{
		"id": "evt_handler_1",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"object": "subscription",
			"id": "sub_handler",
			"customer": "cus_handler",
			"status": "active",
			"metadata": {"distributor_id": "%d"},
			"current_period_end": %d
		}}
	}`, distributorID, periodEnd))
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookBadSignatureIsUnauthorized(t *testing.T) {
	r, _, distributor := setupWebhookTest(t)

	w := postWebhook(r, subscriptionUpdatedBody(distributor.ID), "t=1,v1=deadbeef")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}

func TestStripeWebhookFailedApplyIsServerError(t *testing.T) {
	// the provider only redelivers on non-2xx, so a failed apply must not
	// answer 200 even though the browser API always does
	r, db, distributor := setupWebhookTest(t)
	if err := db.Migrator().DropTable(&models.Subscription{}); err != nil {
		t.Fatalf("drop table failed: %v", err)
	}

	body := subscriptionUpdatedBody(distributor.ID)
	w := postWebhook(r, body, signWebhookBody(t, body, time.Now()))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d body %s", w.Code, w.Body.String())
	}
}

func TestStripeWebhookAppliesAndAcknowledges(t *testing.T) {
	r, db, distributor := setupWebhookTest(t)

	body := subscriptionUpdatedBody(distributor.ID)
	w := postWebhook(r, body, signWebhookBody(t, body, time.Now()))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body %s", w.Code, w.Body.String())
	}

	var subscription models.Subscription
	if err := db.Where("distributor_id = ?", distributor.ID).First(&subscription).Error; err != nil {
		t.Fatalf("subscription row not created: %v", err)
	}
	if subscription.Status != "active" {
		t.Fatalf("status want active got %s", subscription.Status)
	}
}
