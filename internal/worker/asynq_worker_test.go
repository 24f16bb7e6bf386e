package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/provider"
	"github.com/aquaponto/aquaponto/internal/queue"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{}, &models.OrderItem{},
		&models.LoyaltyProgram{}, &models.CustomerLoyaltyPoints{}, &models.LoyaltyRedemption{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	loyaltyRepo := repository.NewLoyaltyRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	consumer := NewConsumer(&provider.Container{
		LoyaltyService: service.NewLoyaltyService(loyaltyRepo, orderRepo),
	})
	return consumer, db
}

func deliveredOrder(t *testing.T, db *gorm.DB, customerID uint) *models.Order {
	t.Helper()
	now := time.Now()
	order := &models.Order{
		OrderNumber:   now.UnixNano(),
		DistributorID: 1,
		CustomerID:    &customerID,
		Status:        constants.OrderStatusEntregue,
		OrderType:     constants.OrderTypeImediato,
		PaymentMethod: constants.PaymentMethodPix,
		DeliveredAt:   &now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestHandleLoyaltyAccrue(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	if err := db.Create(&models.LoyaltyProgram{
		DistributorID: 1, IsEnabled: true, PointsPerOrder: 2, RewardThreshold: 10,
	}).Error; err != nil {
		t.Fatalf("create program failed: %v", err)
	}
	order := deliveredOrder(t, db, 5)

	task, err := queue.NewLoyaltyAccrueTask(queue.LoyaltyAccruePayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleLoyaltyAccrue(context.Background(), task); err != nil {
		t.Fatalf("handle accrue failed: %v", err)
	}

	var balance models.CustomerLoyaltyPoints
	if err := db.Where("customer_id = ? AND distributor_id = ?", 5, 1).First(&balance).Error; err != nil {
		t.Fatalf("load balance failed: %v", err)
	}
	if balance.TotalPoints != 2 {
		t.Fatalf("points want 2 got %d", balance.TotalPoints)
	}
}

func TestHandleLoyaltyAccrueUnknownOrderIsAcked(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	// a missing order must not stay on the queue forever
	task, err := queue.NewLoyaltyAccrueTask(queue.LoyaltyAccruePayload{OrderID: 999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleLoyaltyAccrue(context.Background(), task); err != nil {
		t.Fatalf("unknown order must be acked, got %v", err)
	}
}

func TestHandleLoyaltyAccrueMalformedPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskLoyaltyAccrue, []byte("{not json"))
	if err := consumer.handleLoyaltyAccrue(context.Background(), task); err == nil {
		t.Fatal("malformed payload must fail the task")
	}

	empty := asynq.NewTask(queue.TaskLoyaltyAccrue, []byte(`{"order_id":0}`))
	if err := consumer.handleLoyaltyAccrue(context.Background(), empty); err != nil {
		t.Fatalf("zero order id is dropped, got %v", err)
	}
}

func TestHandleOrderNotifyWithoutService(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	// notification service unset (eg worker without WhatsApp config)
	task, err := queue.NewOrderNotifyTask(queue.OrderNotifyPayload{OrderID: 1, Status: constants.OrderStatusConfirmado})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderNotify(context.Background(), task); err != nil {
		t.Fatalf("missing service must be acked, got %v", err)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux()) // must not panic
	NewConsumer(&provider.Container{}).Register(nil)
}
