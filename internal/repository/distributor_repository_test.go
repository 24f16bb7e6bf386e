package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDistributorRepositoryTest(t *testing.T) (*GormDistributorRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.BusinessHour{}); err != nil {
		t.Fatalf("migrate distributor models failed: %v", err)
	}
	return NewDistributorRepository(db), db
}

type seedListDistributor struct {
	tradeName string
	cnpj      string
	slug      string
	city      string
	uf        string
	active    bool
	onboarded bool
}

func seedListDistributors(t *testing.T, db *gorm.DB, seeds []seedListDistributor) {
	t.Helper()
	for i, seed := range seeds {
		distributor := &models.Distributor{
			UserID:    uint(i + 1),
			TradeName: seed.tradeName,
			CNPJ:      seed.cnpj,
			Slug:      seed.slug,
			WhatsApp:  "5585999110001",
			City:      seed.city,
			UF:        seed.uf,
			IsActive:  seed.active,
		}
		if seed.onboarded {
			now := time.Now()
			distributor.OnboardingCompletedAt = &now
		}
		if err := db.Create(distributor).Error; err != nil {
			t.Fatalf("create distributor %s failed: %v", seed.slug, err)
		}
	}
}

func TestListFiltersActiveAndOnboarded(t *testing.T) {
	repo, db := setupDistributorRepositoryTest(t)
	seedListDistributors(t, db, []seedListDistributor{
		{tradeName: "Água Azul", cnpj: "11444777000161", slug: "agua-azul", city: "Fortaleza", uf: "CE", active: true, onboarded: true},
		{tradeName: "Fonte Norte", cnpj: "15347080000195", slug: "fonte-norte", city: "Fortaleza", uf: "CE", active: true, onboarded: false},
		{tradeName: "Poço Sul", cnpj: "34028316000103", slug: "poco-sul", city: "Sobral", uf: "CE", active: false, onboarded: true},
	})

	distributors, total, err := repo.List(DistributorListFilter{
		Page:          1,
		PageSize:      20,
		OnlyActive:    true,
		OnlyOnboarded: true,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(distributors) != 1 {
		t.Fatalf("total want 1 got %d (rows %d)", total, len(distributors))
	}
	if distributors[0].Slug != "agua-azul" {
		t.Fatalf("slug want agua-azul got %s", distributors[0].Slug)
	}

	_, total, err = repo.List(DistributorListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("unfiltered list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("unfiltered total want 3 got %d", total)
	}
}

func TestListFiltersByCityUFAndSearch(t *testing.T) {
	repo, db := setupDistributorRepositoryTest(t)
	seedListDistributors(t, db, []seedListDistributor{
		{tradeName: "Água Azul", cnpj: "11444777000161", slug: "agua-azul", city: "Fortaleza", uf: "CE", active: true, onboarded: true},
		{tradeName: "Mineral do Vale", cnpj: "15347080000195", slug: "mineral-vale", city: "Recife", uf: "PE", active: true, onboarded: true},
	})

	_, total, err := repo.List(DistributorListFilter{Page: 1, PageSize: 20, City: "Recife"})
	if err != nil {
		t.Fatalf("list by city failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("city total want 1 got %d", total)
	}

	_, total, err = repo.List(DistributorListFilter{Page: 1, PageSize: 20, UF: "ce"})
	if err != nil {
		t.Fatalf("list by uf failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("uf total want 1 got %d", total)
	}

	distributors, total, err := repo.List(DistributorListFilter{Page: 1, PageSize: 20, Search: "Mineral"})
	if err != nil {
		t.Fatalf("list by search failed: %v", err)
	}
	if total != 1 || distributors[0].Slug != "mineral-vale" {
		t.Fatalf("search want mineral-vale got total=%d rows=%+v", total, distributors)
	}
}

func TestListPaginatesOrderedByTradeName(t *testing.T) {
	repo, db := setupDistributorRepositoryTest(t)
	seedListDistributors(t, db, []seedListDistributor{
		{tradeName: "Cristalina", cnpj: "11444777000161", slug: "cristalina", active: true, onboarded: true},
		{tradeName: "Acqua Viva", cnpj: "15347080000195", slug: "acqua-viva", active: true, onboarded: true},
		{tradeName: "Boa Fonte", cnpj: "34028316000103", slug: "boa-fonte", active: true, onboarded: true},
	})

	page1, total, err := repo.List(DistributorListFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	if total != 3 || len(page1) != 2 {
		t.Fatalf("page 1 want 2 of 3 got %d of %d", len(page1), total)
	}
	if page1[0].Slug != "acqua-viva" || page1[1].Slug != "boa-fonte" {
		t.Fatalf("page 1 ordering wrong: %s, %s", page1[0].Slug, page1[1].Slug)
	}

	page2, _, err := repo.List(DistributorListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("page 2 failed: %v", err)
	}
	if len(page2) != 1 || page2[0].Slug != "cristalina" {
		t.Fatalf("page 2 want cristalina got %+v", page2)
	}
}
