package service

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
)

// LoyaltyService points balances, redemptions and accrual
type LoyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	orderRepo   repository.OrderRepository
	newRef      func() string
}

// NewLoyaltyService creates the loyalty service
func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository, orderRepo repository.OrderRepository) *LoyaltyService {
	generate, err := nanoid.CustomASCII("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 10)
	if err != nil {
		panic(err)
	}
	return &LoyaltyService{
		loyaltyRepo: loyaltyRepo,
		orderRepo:   orderRepo,
		newRef:      generate,
	}
}

// LoyaltyBalance balance view for one distributor
type LoyaltyBalance struct {
	DistributorID   uint `json:"distributor_id"`
	TotalPoints     int  `json:"total_points"`
	RedeemedPoints  int  `json:"redeemed_points"`
	AvailablePoints int  `json:"available_points"`
}

// AvailablePoints returns the available balance of a customer at a distributor
func (s *LoyaltyService) AvailablePoints(customerID, distributorID uint) (int, error) {
	if customerID == 0 {
		return 0, ErrNotAuthenticated
	}
	balance, err := s.loyaltyRepo.GetBalance(customerID, distributorID)
	if err != nil {
		return 0, err
	}
	if balance == nil {
		return 0, nil
	}
	return balance.Available(), nil
}

// ListBalances lists all balances of a customer
func (s *LoyaltyService) ListBalances(customerID uint) ([]LoyaltyBalance, error) {
	if customerID == 0 {
		return nil, ErrNotAuthenticated
	}
	rows, err := s.loyaltyRepo.ListBalancesByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	balances := make([]LoyaltyBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, LoyaltyBalance{
			DistributorID:   row.DistributorID,
			TotalPoints:     row.TotalPoints,
			RedeemedPoints:  row.RedeemedPoints,
			AvailablePoints: row.Available(),
		})
	}
	return balances, nil
}

// Redeem burns points against the distributor's reward. The audit row is
// created as pending, then one transaction re-reads the balance under a row
// lock, verifies the available balance and confirms — two concurrent
// redemptions over the same balance cannot both succeed on stale reads.
func (s *LoyaltyService) Redeem(customerID, distributorID uint, points int) (*models.LoyaltyRedemption, error) {
	if customerID == 0 {
		return nil, ErrNotAuthenticated
	}
	if points <= 0 {
		return nil, ErrInsufficientPoints
	}

	program, err := s.loyaltyRepo.GetProgram(distributorID)
	if err != nil {
		return nil, err
	}
	if program == nil || !program.IsEnabled {
		return nil, ErrLoyaltyProgramDisabled
	}

	redemption := &models.LoyaltyRedemption{
		Reference:         s.newRef(),
		CustomerID:        customerID,
		DistributorID:     distributorID,
		Points:            points,
		RewardDescription: program.RewardDescription,
		Status:            constants.RedemptionStatusPending,
	}
	if err := s.loyaltyRepo.CreateRedemption(redemption); err != nil {
		return nil, err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		loyaltyTx := s.loyaltyRepo.WithTx(tx)
		balance, err := loyaltyTx.GetBalanceForUpdate(customerID, distributorID)
		if err != nil {
			return err
		}
		if balance == nil || balance.Available() < points {
			return ErrInsufficientPoints
		}
		balance.RedeemedPoints += points
		if err := loyaltyTx.UpdateBalance(balance); err != nil {
			return err
		}
		now := time.Now()
		redemption.Status = constants.RedemptionStatusConfirmed
		redemption.ConfirmedAt = &now
		return loyaltyTx.UpdateRedemption(redemption)
	})
	if err != nil {
		now := time.Now()
		redemption.Status = constants.RedemptionStatusRejected
		redemption.RejectedAt = &now
		if updateErr := s.loyaltyRepo.UpdateRedemption(redemption); updateErr != nil {
			logger.Errorw("loyalty_redemption_reject_failed",
				"reference", redemption.Reference,
				"error", updateErr,
			)
		}
		return nil, err
	}
	return redemption, nil
}

// AccrueForOrder awards points for a delivered order. Idempotent: the
// loyalty_points_awarded flag flips exactly once, replays are no-ops.
func (s *LoyaltyService) AccrueForOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.CustomerID == nil || *order.CustomerID == 0 {
		return nil // guest orders accrue nothing
	}
	if order.Status != constants.OrderStatusEntregue {
		return nil
	}

	program, err := s.loyaltyRepo.GetProgram(order.DistributorID)
	if err != nil {
		return err
	}
	if program == nil || !program.IsEnabled {
		return nil
	}
	if program.MinOrderValue != nil && order.Total.LessThan(program.MinOrderValue.Decimal) {
		return nil
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		awarded, err := s.orderRepo.WithTx(tx).MarkLoyaltyAwarded(order.ID)
		if err != nil {
			return err
		}
		if !awarded {
			return nil
		}
		loyaltyTx := s.loyaltyRepo.WithTx(tx)
		balance, err := loyaltyTx.GetBalanceForUpdate(*order.CustomerID, order.DistributorID)
		if err != nil {
			return err
		}
		if balance == nil {
			balance = &models.CustomerLoyaltyPoints{
				CustomerID:    *order.CustomerID,
				DistributorID: order.DistributorID,
				TotalPoints:   program.PointsPerOrder,
			}
			return loyaltyTx.CreateBalance(balance)
		}
		balance.TotalPoints += program.PointsPerOrder
		return loyaltyTx.UpdateBalance(balance)
	})
}

// GetProgram returns the loyalty program of a distributor
func (s *LoyaltyService) GetProgram(distributorID uint) (*models.LoyaltyProgram, error) {
	return s.loyaltyRepo.GetProgram(distributorID)
}

// UpsertProgram saves the loyalty program of a distributor
func (s *LoyaltyService) UpsertProgram(program *models.LoyaltyProgram) error {
	if program.PointsPerOrder < 1 || program.RewardThreshold < 1 {
		return ErrInvalidLoyaltyProgram
	}
	return s.loyaltyRepo.UpsertProgram(program)
}

// ListRedemptions lists redemptions for a distributor dashboard
func (s *LoyaltyService) ListRedemptions(filter repository.RedemptionListFilter) ([]models.LoyaltyRedemption, int64, error) {
	return s.loyaltyRepo.ListRedemptions(filter)
}
