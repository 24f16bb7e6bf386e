package repository

import "time"

// DistributorListFilter distributor list filter
type DistributorListFilter struct {
	Page          int
	PageSize      int
	Search        string
	City          string
	UF            string
	OnlyActive    bool
	OnlyOnboarded bool
}

// ProductListFilter product list filter
type ProductListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	BrandID       uint
	Search        string
	OnlyAvailable bool
}

// OrderListFilter order list filter
type OrderListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	CustomerID    uint
	Status        string
	OrderType     string
	OrderNumber   int64
	GuestPhone    string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// RedemptionListFilter loyalty redemption list filter
type RedemptionListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	CustomerID    uint
	Status        string
}

// UserLoginLogListFilter login log list filter
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
