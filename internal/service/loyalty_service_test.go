package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLoyaltyTest(t *testing.T) (*LoyaltyService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.LoyaltyProgram{}, &models.CustomerLoyaltyPoints{}, &models.LoyaltyRedemption{},
		&models.Order{}, &models.OrderItem{}, &models.OrderCounter{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db
	svc := NewLoyaltyService(repository.NewLoyaltyRepository(db), repository.NewOrderRepository(db))
	return svc, db
}

func createLoyaltyProgram(t *testing.T, db *gorm.DB, distributorID uint, minOrderValue *models.Money) *models.LoyaltyProgram {
	t.Helper()
	program := &models.LoyaltyProgram{
		DistributorID:     distributorID,
		IsEnabled:         true,
		PointsPerOrder:    1,
		RewardThreshold:   10,
		RewardDescription: "Galão 20L grátis",
		MinOrderValue:     minOrderValue,
	}
	if err := db.Create(program).Error; err != nil {
		t.Fatalf("create program failed: %v", err)
	}
	return program
}

func createDeliveredOrder(t *testing.T, db *gorm.DB, customerID *uint, distributorID uint, total string) *models.Order {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	if err != nil {
		t.Fatalf("bad total %q: %v", total, err)
	}
	now := time.Now()
	order := &models.Order{
		OrderNumber:   now.UnixNano(),
		DistributorID: distributorID,
		CustomerID:    customerID,
		Status:        constants.OrderStatusEntregue,
		OrderType:     constants.OrderTypeImediato,
		PaymentMethod: constants.PaymentMethodPix,
		Subtotal:      models.NewMoneyFromDecimal(amount),
		Total:         models.NewMoneyFromDecimal(amount),
		DeliveredAt:   &now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func uintPtr(v uint) *uint {
	return &v
}

func TestRedeemInsufficientPoints(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	if err := db.Create(&models.CustomerLoyaltyPoints{
		CustomerID: 5, DistributorID: 1, TotalPoints: 4, RedeemedPoints: 0,
	}).Error; err != nil {
		t.Fatalf("create balance failed: %v", err)
	}

	if _, err := svc.Redeem(5, 1, 10); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("want ErrInsufficientPoints got %v", err)
	}

	// the audit trail keeps the failed attempt as rejected
	var redemption models.LoyaltyRedemption
	if err := db.Where("customer_id = ?", 5).First(&redemption).Error; err != nil {
		t.Fatalf("load redemption failed: %v", err)
	}
	if redemption.Status != constants.RedemptionStatusRejected {
		t.Fatalf("redemption status want rejected got %s", redemption.Status)
	}
	if redemption.RejectedAt == nil {
		t.Fatal("rejected_at must be set")
	}
}

func TestRedeemConfirmsAndBurnsPoints(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	if err := db.Create(&models.CustomerLoyaltyPoints{
		CustomerID: 5, DistributorID: 1, TotalPoints: 12, RedeemedPoints: 0,
	}).Error; err != nil {
		t.Fatalf("create balance failed: %v", err)
	}

	redemption, err := svc.Redeem(5, 1, 10)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if redemption.Status != constants.RedemptionStatusConfirmed {
		t.Fatalf("status want confirmed got %s", redemption.Status)
	}
	if redemption.ConfirmedAt == nil {
		t.Fatal("confirmed_at must be set")
	}
	if len(redemption.Reference) != 10 {
		t.Fatalf("reference want 10 chars got %q", redemption.Reference)
	}
	if redemption.RewardDescription != "Galão 20L grátis" {
		t.Fatalf("reward snapshot missing: %q", redemption.RewardDescription)
	}

	available, err := svc.AvailablePoints(5, 1)
	if err != nil {
		t.Fatalf("available points failed: %v", err)
	}
	if available != 2 {
		t.Fatalf("available want 2 got %d", available)
	}
}

func TestRedeemConcurrentNeverOverdraws(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	if err := db.Create(&models.CustomerLoyaltyPoints{
		CustomerID: 5, DistributorID: 1, TotalPoints: 15, RedeemedPoints: 0,
	}).Error; err != nil {
		t.Fatalf("create balance failed: %v", err)
	}
	// single connection serializes the two transactions the way a row lock
	// would on a server database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// two redemptions race over one 15-point balance; only one may confirm
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(5, 1, 10)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	confirmed, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, ErrInsufficientPoints):
			insufficient++
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}
	if confirmed != 1 || insufficient != 1 {
		t.Fatalf("want exactly one confirmation, got %d confirmed %d insufficient", confirmed, insufficient)
	}

	var balance models.CustomerLoyaltyPoints
	if err := db.Where("customer_id = ? AND distributor_id = ?", 5, 1).First(&balance).Error; err != nil {
		t.Fatalf("load balance failed: %v", err)
	}
	if balance.RedeemedPoints != 10 {
		t.Fatalf("redeemed want 10 got %d", balance.RedeemedPoints)
	}
	var confirmedRows int64
	if err := db.Model(&models.LoyaltyRedemption{}).
		Where("status = ?", constants.RedemptionStatusConfirmed).
		Count(&confirmedRows).Error; err != nil {
		t.Fatalf("count redemptions failed: %v", err)
	}
	if confirmedRows != 1 {
		t.Fatalf("confirmed rows want 1 got %d", confirmedRows)
	}
}

func TestRedeemRequiresEnabledProgram(t *testing.T) {
	svc, db := setupLoyaltyTest(t)

	// no program at all
	if _, err := svc.Redeem(5, 1, 10); !errors.Is(err, ErrLoyaltyProgramDisabled) {
		t.Fatalf("missing program: want ErrLoyaltyProgramDisabled got %v", err)
	}

	program := createLoyaltyProgram(t, db, 1, nil)
	if err := db.Model(program).Update("is_enabled", false).Error; err != nil {
		t.Fatalf("disable program failed: %v", err)
	}
	if _, err := svc.Redeem(5, 1, 10); !errors.Is(err, ErrLoyaltyProgramDisabled) {
		t.Fatalf("disabled program: want ErrLoyaltyProgramDisabled got %v", err)
	}
}

func TestRedeemRejectsNonPositivePoints(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)

	if _, err := svc.Redeem(5, 1, 0); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("zero points: want ErrInsufficientPoints got %v", err)
	}
	if _, err := svc.Redeem(5, 1, -3); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("negative points: want ErrInsufficientPoints got %v", err)
	}
	if _, err := svc.Redeem(0, 1, 10); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("anonymous: want ErrNotAuthenticated got %v", err)
	}
}

func TestAccrueForOrderIsIdempotent(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	order := createDeliveredOrder(t, db, uintPtr(5), 1, "42.75")

	if err := svc.AccrueForOrder(order.ID); err != nil {
		t.Fatalf("first accrual failed: %v", err)
	}
	if err := svc.AccrueForOrder(order.ID); err != nil {
		t.Fatalf("replayed accrual failed: %v", err)
	}

	var balance models.CustomerLoyaltyPoints
	if err := db.Where("customer_id = ? AND distributor_id = ?", 5, 1).First(&balance).Error; err != nil {
		t.Fatalf("load balance failed: %v", err)
	}
	if balance.TotalPoints != 1 {
		t.Fatalf("replay must not double-award, want 1 got %d", balance.TotalPoints)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if !stored.LoyaltyPointsAwarded {
		t.Fatal("loyalty_points_awarded flag must flip")
	}
}

func TestAccrueForOrderSkipsGuestOrders(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	order := createDeliveredOrder(t, db, nil, 1, "30.00")

	if err := svc.AccrueForOrder(order.ID); err != nil {
		t.Fatalf("guest accrual failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CustomerLoyaltyPoints{}).Count(&count).Error; err != nil {
		t.Fatalf("count balances failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("guest orders accrue nothing, found %d balances", count)
	}
}

func TestAccrueForOrderBelowMinimumValue(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	minimum := models.NewMoneyFromDecimal(decimal.NewFromInt(50))
	createLoyaltyProgram(t, db, 1, &minimum)
	order := createDeliveredOrder(t, db, uintPtr(5), 1, "42.75")

	if err := svc.AccrueForOrder(order.ID); err != nil {
		t.Fatalf("accrual failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CustomerLoyaltyPoints{}).Count(&count).Error; err != nil {
		t.Fatalf("count balances failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("below-minimum orders accrue nothing, found %d balances", count)
	}
}

func TestAccrueForOrderOnlyWhenDelivered(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	createLoyaltyProgram(t, db, 1, nil)
	order := createDeliveredOrder(t, db, uintPtr(5), 1, "42.75")
	if err := db.Model(order).Update("status", constants.OrderStatusConfirmado).Error; err != nil {
		t.Fatalf("rewind status failed: %v", err)
	}

	if err := svc.AccrueForOrder(order.ID); err != nil {
		t.Fatalf("accrual failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CustomerLoyaltyPoints{}).Count(&count).Error; err != nil {
		t.Fatalf("count balances failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("undelivered orders accrue nothing, found %d balances", count)
	}

	if err := svc.AccrueForOrder(order.ID + 999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order: want ErrOrderNotFound got %v", err)
	}
}

func TestListBalancesRequiresAuthentication(t *testing.T) {
	svc, db := setupLoyaltyTest(t)
	if _, err := svc.ListBalances(0); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated got %v", err)
	}
	if _, err := svc.AvailablePoints(0, 1); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated got %v", err)
	}

	for _, row := range []models.CustomerLoyaltyPoints{
		{CustomerID: 5, DistributorID: 1, TotalPoints: 8, RedeemedPoints: 3},
		{CustomerID: 5, DistributorID: 2, TotalPoints: 2},
	} {
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create balance failed: %v", err)
		}
	}
	balances, err := svc.ListBalances(5)
	if err != nil {
		t.Fatalf("list balances failed: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("balance count want 2 got %d", len(balances))
	}
	for _, balance := range balances {
		if balance.DistributorID == 1 && balance.AvailablePoints != 5 {
			t.Fatalf("available want 5 got %d", balance.AvailablePoints)
		}
	}
}

func TestUpsertProgramValidation(t *testing.T) {
	svc, _ := setupLoyaltyTest(t)
	if err := svc.UpsertProgram(&models.LoyaltyProgram{
		DistributorID: 1, PointsPerOrder: 0, RewardThreshold: 10,
	}); !errors.Is(err, ErrInvalidLoyaltyProgram) {
		t.Fatalf("zero points per order: want ErrInvalidLoyaltyProgram got %v", err)
	}
	if err := svc.UpsertProgram(&models.LoyaltyProgram{
		DistributorID: 1, PointsPerOrder: 1, RewardThreshold: 0,
	}); !errors.Is(err, ErrInvalidLoyaltyProgram) {
		t.Fatalf("zero threshold: want ErrInvalidLoyaltyProgram got %v", err)
	}
	if err := svc.UpsertProgram(&models.LoyaltyProgram{
		DistributorID: 1, PointsPerOrder: 1, RewardThreshold: 10, IsEnabled: true,
	}); err != nil {
		t.Fatalf("valid program rejected: %v", err)
	}
}
