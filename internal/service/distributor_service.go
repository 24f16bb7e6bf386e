package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/gateway/viacep"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/shopspring/decimal"
)

// DistributorService distributor onboarding, profile and catalog management
type DistributorService struct {
	distributorRepo repository.DistributorRepository
	productRepo     repository.ProductRepository
	discountRepo    repository.DiscountRuleRepository
	hoursService    *HoursService
	pricingService  *PricingService
	viacepClient    *viacep.Client
}

// NewDistributorService creates the distributor service
func NewDistributorService(
	distributorRepo repository.DistributorRepository,
	productRepo repository.ProductRepository,
	discountRepo repository.DiscountRuleRepository,
	hoursService *HoursService,
	pricingService *PricingService,
	viacepClient *viacep.Client,
) *DistributorService {
	return &DistributorService{
		distributorRepo: distributorRepo,
		productRepo:     productRepo,
		discountRepo:    discountRepo,
		hoursService:    hoursService,
		pricingService:  pricingService,
		viacepClient:    viacepClient,
	}
}

// OnboardInput distributor onboarding input
type OnboardInput struct {
	TradeName     string
	CorporateName string
	CNPJ          string
	WhatsApp      string
	CEP           string
	Number        string
	Complement    string
}

// Onboard creates the distributor profile for an owner account. The CNPJ
// check digits are validated locally, the address is resolved via CEP and
// the storefront slug is derived from the trade name.
func (s *DistributorService) Onboard(ctx context.Context, userID uint, input OnboardInput) (*models.Distributor, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	existing, err := s.distributorRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCNPJExists
	}

	tradeName := strings.TrimSpace(input.TradeName)
	if tradeName == "" {
		return nil, ErrNotFound
	}
	cnpj, err := NormalizeCNPJ(input.CNPJ)
	if err != nil {
		return nil, err
	}
	if byCNPJ, err := s.distributorRepo.GetByCNPJ(cnpj); err != nil {
		return nil, err
	} else if byCNPJ != nil {
		return nil, ErrCNPJExists
	}
	whatsapp, err := NormalizePhone(input.WhatsApp)
	if err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(ctx, input.CEP)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(tradeName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	distributor := &models.Distributor{
		UserID:                userID,
		TradeName:             tradeName,
		CorporateName:         strings.TrimSpace(input.CorporateName),
		CNPJ:                  cnpj,
		Slug:                  slug,
		WhatsApp:              whatsapp,
		CEP:                   address.CEP,
		Street:                address.Street,
		Number:                strings.TrimSpace(input.Number),
		Complement:            strings.TrimSpace(input.Complement),
		Neighborhood:          address.Neighborhood,
		City:                  address.City,
		UF:                    address.UF,
		IsActive:              true,
		OnboardingCompletedAt: &now,
	}
	if err := s.distributorRepo.Create(distributor); err != nil {
		return nil, err
	}
	logger.Infow("distributor_onboarded",
		"distributor_id", distributor.ID,
		"slug", distributor.Slug,
	)
	return distributor, nil
}

// resolveAddress validates the CEP and fills the address via lookup
func (s *DistributorService) resolveAddress(ctx context.Context, rawCEP string) (*viacep.Address, error) {
	cep, err := NormalizeCEP(rawCEP)
	if err != nil {
		return nil, err
	}
	address, err := s.viacepClient.Lookup(ctx, cep)
	if err != nil {
		switch {
		case errors.Is(err, viacep.ErrInvalidCEP):
			return nil, ErrInvalidCEP
		case errors.Is(err, viacep.ErrCEPNotFound):
			return nil, ErrCEPNotFound
		default:
			return nil, err
		}
	}
	return address, nil
}

// uniqueSlug derives a slug from the trade name, suffixing on collisions
func (s *DistributorService) uniqueSlug(tradeName string) (string, error) {
	base := Slugify(tradeName)
	if base == "" {
		return "", ErrSlugExists
	}
	slug := base
	for attempt := 2; attempt <= 50; attempt++ {
		existing, err := s.distributorRepo.GetBySlug(slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", ErrSlugExists
}

// UpdateProfileInput mutable profile fields
type UpdateProfileInput struct {
	TradeName     string
	CorporateName string
	WhatsApp      string
	LogoURL       string
	CEP           string
	Number        string
	Complement    string
}

// UpdateProfile updates the distributor profile. CNPJ and slug are fixed
// after onboarding; a CEP change re-resolves the address.
func (s *DistributorService) UpdateProfile(ctx context.Context, distributorID uint, input UpdateProfileInput) (*models.Distributor, error) {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return nil, err
	}
	if distributor == nil {
		return nil, ErrNotFound
	}

	if tradeName := strings.TrimSpace(input.TradeName); tradeName != "" {
		distributor.TradeName = tradeName
	}
	if corporateName := strings.TrimSpace(input.CorporateName); corporateName != "" {
		distributor.CorporateName = corporateName
	}
	if strings.TrimSpace(input.WhatsApp) != "" {
		whatsapp, err := NormalizePhone(input.WhatsApp)
		if err != nil {
			return nil, err
		}
		distributor.WhatsApp = whatsapp
	}
	if logoURL := strings.TrimSpace(input.LogoURL); logoURL != "" {
		distributor.LogoURL = logoURL
	}
	if strings.TrimSpace(input.CEP) != "" {
		address, err := s.resolveAddress(ctx, input.CEP)
		if err != nil {
			return nil, err
		}
		distributor.CEP = address.CEP
		distributor.Street = address.Street
		distributor.Neighborhood = address.Neighborhood
		distributor.City = address.City
		distributor.UF = address.UF
		distributor.Number = strings.TrimSpace(input.Number)
		distributor.Complement = strings.TrimSpace(input.Complement)
	}

	if err := s.distributorRepo.Update(distributor); err != nil {
		return nil, err
	}
	return distributor, nil
}

// SetActive toggles the distributor storefront on or off
func (s *DistributorService) SetActive(distributorID uint, active bool) error {
	return s.distributorRepo.UpdateFields(distributorID, map[string]interface{}{"is_active": active})
}

// GetByUserID fetches the distributor owned by a user
func (s *DistributorService) GetByUserID(userID uint) (*models.Distributor, error) {
	return s.distributorRepo.GetByUserID(userID)
}

// GetByID fetches a distributor by ID
func (s *DistributorService) GetByID(id uint) (*models.Distributor, error) {
	return s.distributorRepo.GetByID(id)
}

// List paginated distributor listing
func (s *DistributorService) List(filter repository.DistributorListFilter) ([]models.Distributor, int64, error) {
	return s.distributorRepo.List(filter)
}

// Storefront public storefront view of a distributor
type Storefront struct {
	Distributor *models.Distributor   `json:"distributor"`
	Products    []models.Product      `json:"products"`
	Hours       []models.BusinessHour `json:"business_hours"`
	Discounts   []models.DiscountRule `json:"discounts"`
	Currency    string                `json:"currency"`
	OpenNow     bool                  `json:"open_now"`
	NextOpening *time.Time            `json:"next_opening,omitempty"`
}

// GetStorefront resolves a public storefront by slug. Inactive and
// un-onboarded distributors are invisible.
func (s *DistributorService) GetStorefront(slug string, now time.Time) (*Storefront, error) {
	distributor, err := s.distributorRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if distributor == nil || !distributor.IsActive || !distributor.OnboardingComplete() {
		return nil, ErrNotFound
	}

	products, _, err := s.productRepo.List(repository.ProductListFilter{
		DistributorID: distributor.ID,
		OnlyAvailable: true,
		Page:          1,
		PageSize:      200,
	})
	if err != nil {
		return nil, err
	}
	hours, err := s.distributorRepo.GetHours(distributor.ID)
	if err != nil {
		return nil, err
	}
	discounts, err := s.discountRepo.ListByDistributor(distributor.ID, true)
	if err != nil {
		return nil, err
	}

	return &Storefront{
		Distributor: distributor,
		Products:    products,
		Hours:       hours,
		Discounts:   discounts,
		Currency:    constants.SiteCurrencyDefault,
		OpenNow:     s.hoursService.IsOpenAt(hours, now),
		NextOpening: s.hoursService.NextOpening(hours, now),
	}, nil
}

// GetHours returns the weekly schedule of a distributor
func (s *DistributorService) GetHours(distributorID uint) ([]models.BusinessHour, error) {
	return s.distributorRepo.GetHours(distributorID)
}

// ReplaceHours validates and saves the full weekly schedule
func (s *DistributorService) ReplaceHours(distributorID uint, hours []models.BusinessHour) error {
	if err := s.hoursService.ValidateWeek(hours); err != nil {
		return err
	}
	return s.distributorRepo.ReplaceHours(distributorID, hours)
}

// ProductInput product create/update input
type ProductInput struct {
	BrandName   string
	Name        string
	Description string
	Liters      decimal.Decimal
	Price       models.Money
	ImageURL    string
	IsAvailable bool
	SortOrder   int
}

// CreateProduct adds a catalog item to the distributor
func (s *DistributorService) CreateProduct(distributorID uint, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" || !input.Price.Decimal.IsPositive() {
		return nil, ErrInvalidOrderItem
	}
	product := &models.Product{
		DistributorID: distributorID,
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Liters:        input.Liters,
		Price:         input.Price,
		ImageURL:      strings.TrimSpace(input.ImageURL),
		IsAvailable:   input.IsAvailable,
		SortOrder:     input.SortOrder,
	}
	if brandName := strings.TrimSpace(input.BrandName); brandName != "" {
		brand, err := s.productRepo.GetOrCreateBrand(brandName)
		if err != nil {
			return nil, err
		}
		if brand != nil {
			product.BrandID = &brand.ID
		}
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates a catalog item scoped to the distributor
func (s *DistributorService) UpdateProduct(productID, distributorID uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByIDAndDistributor(productID, distributorID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(input.Name) == "" || !input.Price.Decimal.IsPositive() {
		return nil, ErrInvalidOrderItem
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Liters = input.Liters
	product.Price = input.Price
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.IsAvailable = input.IsAvailable
	product.SortOrder = input.SortOrder
	if brandName := strings.TrimSpace(input.BrandName); brandName != "" {
		brand, err := s.productRepo.GetOrCreateBrand(brandName)
		if err != nil {
			return nil, err
		}
		if brand != nil {
			product.BrandID = &brand.ID
		}
	} else {
		product.BrandID = nil
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a catalog item scoped to the distributor
func (s *DistributorService) DeleteProduct(productID, distributorID uint) error {
	return s.productRepo.Delete(productID, distributorID)
}

// ListProducts paginated catalog listing
func (s *DistributorService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// CreateDiscountRule adds a quantity tier
func (s *DistributorService) CreateDiscountRule(distributorID uint, rule *models.DiscountRule) error {
	rule.DistributorID = distributorID
	if err := s.pricingService.ValidateTier(rule); err != nil {
		return err
	}
	return s.discountRepo.Create(rule)
}

// UpdateDiscountRule updates a quantity tier scoped to the distributor
func (s *DistributorService) UpdateDiscountRule(ruleID, distributorID uint, input *models.DiscountRule) (*models.DiscountRule, error) {
	rule, err := s.discountRepo.GetByIDAndDistributor(ruleID, distributorID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrNotFound
	}
	rule.MinQuantity = input.MinQuantity
	rule.MaxQuantity = input.MaxQuantity
	rule.Percent = input.Percent
	rule.IsActive = input.IsActive
	if err := s.pricingService.ValidateTier(rule); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteDiscountRule removes a quantity tier scoped to the distributor
func (s *DistributorService) DeleteDiscountRule(ruleID, distributorID uint) error {
	return s.discountRepo.Delete(ruleID, distributorID)
}

// ListDiscountRules lists the tiers of a distributor
func (s *DistributorService) ListDiscountRules(distributorID uint, onlyActive bool) ([]models.DiscountRule, error) {
	return s.discountRepo.ListByDistributor(distributorID, onlyActive)
}
