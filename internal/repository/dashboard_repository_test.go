package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDashboardRepositoryTest(t *testing.T) (*GormDashboardRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate dashboard models failed: %v", err)
	}
	return NewDashboardRepository(db), db
}

func seedDashboardDistributor(t *testing.T, db *gorm.DB, tradeName, cnpj, slug string, active bool) *models.Distributor {
	t.Helper()
	now := time.Now()
	distributor := &models.Distributor{
		UserID:                uint(time.Now().UnixNano() % 1_000_000),
		TradeName:             tradeName,
		CNPJ:                  cnpj,
		Slug:                  slug,
		WhatsApp:              "5585999110001",
		IsActive:              active,
		OnboardingCompletedAt: &now,
	}
	if err := db.Create(distributor).Error; err != nil {
		t.Fatalf("create distributor failed: %v", err)
	}
	return distributor
}

func seedDashboardOrder(t *testing.T, db *gorm.DB, distributorID uint, status string, total int64) {
	t.Helper()
	order := &models.Order{
		OrderNumber:   time.Now().UnixNano(),
		DistributorID: distributorID,
		Status:        status,
		OrderType:     constants.OrderTypeImediato,
		PaymentMethod: constants.PaymentMethodPix,
		Subtotal:      models.NewMoneyFromDecimal(decimal.NewFromInt(total)),
		Total:         models.NewMoneyFromDecimal(decimal.NewFromInt(total)),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
}

func TestCountDistributorsOnlyActive(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	seedDashboardDistributor(t, db, "Água Azul", "11444777000161", "agua-azul", true)
	seedDashboardDistributor(t, db, "Fonte Norte", "15347080000195", "fonte-norte", false)

	total, err := repo.CountDistributors(false)
	if err != nil {
		t.Fatalf("count all failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total want 2 got %d", total)
	}

	active, err := repo.CountDistributors(true)
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if active != 1 {
		t.Fatalf("active want 1 got %d", active)
	}
}

func TestSumOrderRevenueCountsDeliveredOnly(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	distributor := seedDashboardDistributor(t, db, "Água Azul", "11444777000161", "agua-azul", true)

	seedDashboardOrder(t, db, distributor.ID, constants.OrderStatusEntregue, 50)
	seedDashboardOrder(t, db, distributor.ID, constants.OrderStatusEntregue, 30)
	seedDashboardOrder(t, db, distributor.ID, constants.OrderStatusCancelado, 99)
	seedDashboardOrder(t, db, distributor.ID, constants.OrderStatusNovo, 10)

	now := time.Now()
	revenue, err := repo.SumOrderRevenue(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("sum revenue failed: %v", err)
	}
	if revenue.StringFixed(2) != "80.00" {
		t.Fatalf("revenue want 80.00 got %s", revenue.StringFixed(2))
	}

	counts, err := repo.CountOrdersByStatus(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("count by status failed: %v", err)
	}
	if counts[constants.OrderStatusEntregue] != 2 || counts[constants.OrderStatusCancelado] != 1 {
		t.Fatalf("unexpected status counts: %v", counts)
	}
}

func TestTopDistributorsRanksByDeliveredRevenue(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	first := seedDashboardDistributor(t, db, "Água Azul", "11444777000161", "agua-azul", true)
	second := seedDashboardDistributor(t, db, "Fonte Norte", "15347080000195", "fonte-norte", true)

	seedDashboardOrder(t, db, first.ID, constants.OrderStatusEntregue, 40)
	seedDashboardOrder(t, db, second.ID, constants.OrderStatusEntregue, 100)
	seedDashboardOrder(t, db, second.ID, constants.OrderStatusNovo, 500) // not delivered, out of the ranking

	now := time.Now()
	rows, err := repo.TopDistributors(now.Add(-time.Hour), now.Add(time.Hour), 5)
	if err != nil {
		t.Fatalf("top distributors failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows len want 2 got %d", len(rows))
	}
	if rows[0].DistributorID != second.ID || rows[0].TradeName != "Fonte Norte" {
		t.Fatalf("first row want Fonte Norte got %+v", rows[0])
	}
	if rows[0].Revenue.StringFixed(2) != "100.00" {
		t.Fatalf("top revenue want 100.00 got %s", rows[0].Revenue.StringFixed(2))
	}
	if rows[0].OrderCount != 1 {
		t.Fatalf("top order count want 1 got %d", rows[0].OrderCount)
	}
}
