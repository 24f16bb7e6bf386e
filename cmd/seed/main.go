package main

import (
	"fmt"
	"log"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("falha ao conectar no banco de dados: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("falha na migração do banco de dados: %v", err)
	}

	// marcas compartilhadas de água mineral
	brands := []models.Brand{
		{Name: "Indaiá"},
		{Name: "Crystal"},
		{Name: "Minalba"},
		{Name: "Bonafont"},
	}
	brandIDs := map[string]uint{}
	for _, brand := range brands {
		var existing models.Brand
		if err := models.DB.Where("name = ?", brand.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&brand).Error; err != nil {
				stdLog.Printf("falha ao criar a marca %s: %v", brand.Name, err)
				continue
			}
			stdLog.Printf("marca criada: %s", brand.Name)
			brandIDs[brand.Name] = brand.ID
		} else {
			brandIDs[existing.Name] = existing.ID
		}
	}

	// conta do dono da distribuidora de demonstração
	owner := seedUser(stdLog, models.User{
		Email:  "distribuidora@aguaazul.com.br",
		Name:   "Carlos Pereira",
		Phone:  "5585999110001",
		Role:   "distributor",
		Status: "active",
	}, "agua-azul-2026")

	// cliente de demonstração
	seedUser(stdLog, models.User{
		Email:  "cliente@example.com",
		Name:   "Maria Souza",
		Phone:  "5585999220002",
		Role:   "customer",
		Status: "active",
	}, "cliente-2026")

	if owner == nil {
		stdLog.Fatalf("sem conta de dono, impossível semear a distribuidora")
	}

	now := time.Now()
	distributor := models.Distributor{
		UserID:                owner.ID,
		TradeName:             "Água Azul Distribuidora",
		CorporateName:         "Água Azul Comércio de Bebidas LTDA",
		CNPJ:                  "11444777000161",
		Slug:                  "agua-azul-distribuidora",
		WhatsApp:              "5585999110001",
		CEP:                   "60160230",
		Street:                "Avenida Desembargador Moreira",
		Number:                "1300",
		Neighborhood:          "Aldeota",
		City:                  "Fortaleza",
		UF:                    "CE",
		IsActive:              true,
		OnboardingCompletedAt: &now,
	}
	var existingDist models.Distributor
	if err := models.DB.Where("cnpj = ?", distributor.CNPJ).First(&existingDist).Error; err != nil {
		if err := models.DB.Create(&distributor).Error; err != nil {
			stdLog.Fatalf("falha ao criar a distribuidora: %v", err)
		}
		stdLog.Printf("distribuidora criada: %s", distributor.Slug)
	} else {
		distributor = existingDist
		stdLog.Printf("distribuidora já existe: %s", distributor.Slug)
	}

	// horário comercial: segunda a sábado 08:00-18:00, domingo fechado
	for weekday := 0; weekday <= 6; weekday++ {
		hour := models.BusinessHour{
			DistributorID: distributor.ID,
			Weekday:       weekday,
			IsOpen:        weekday != 0,
			OpensAt:       "08:00",
			ClosesAt:      "18:00",
		}
		if !hour.IsOpen {
			hour.OpensAt = ""
			hour.ClosesAt = ""
		}
		var existing models.BusinessHour
		if err := models.DB.Where("distributor_id = ? AND weekday = ?", distributor.ID, weekday).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&hour).Error; err != nil {
				stdLog.Printf("falha ao criar o horário do dia %d: %v", weekday, err)
			}
		}
	}

	// catálogo de demonstração
	indaiaID := brandIDs["Indaiá"]
	crystalID := brandIDs["Crystal"]
	products := []models.Product{
		{
			DistributorID: distributor.ID,
			BrandID:       &indaiaID,
			Name:          "Galão 20L Indaiá (retornável)",
			Description:   "Troca de galão retornável de 20 litros.",
			Liters:        decimal.NewFromInt(20),
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(12.00)),
			IsAvailable:   true,
			SortOrder:     100,
		},
		{
			DistributorID: distributor.ID,
			BrandID:       &crystalID,
			Name:          "Galão 20L Crystal (retornável)",
			Description:   "Troca de galão retornável de 20 litros.",
			Liters:        decimal.NewFromInt(20),
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(13.50)),
			IsAvailable:   true,
			SortOrder:     90,
		},
		{
			DistributorID: distributor.ID,
			BrandID:       &indaiaID,
			Name:          "Fardo 12x500ml Indaiá",
			Description:   "Fardo com 12 garrafas de 500ml sem gás.",
			Liters:        decimal.NewFromInt(6),
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(18.90)),
			IsAvailable:   true,
			SortOrder:     80,
		},
		{
			DistributorID: distributor.ID,
			Name:          "Bomba elétrica para galão",
			Description:   "Bomba recarregável via USB.",
			Liters:        decimal.Zero,
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(39.90)),
			IsAvailable:   true,
			SortOrder:     10,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("distributor_id = ? AND name = ?", distributor.ID, product.Name).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("falha ao criar o produto %s: %v", product.Name, err)
			} else {
				stdLog.Printf("produto criado: %s", product.Name)
			}
		}
	}

	// faixas de desconto por quantidade
	threeToFive := 5
	discounts := []models.DiscountRule{
		{DistributorID: distributor.ID, MinQuantity: 3, MaxQuantity: &threeToFive, Percent: decimal.NewFromInt(5), IsActive: true},
		{DistributorID: distributor.ID, MinQuantity: 6, Percent: decimal.NewFromInt(10), IsActive: true},
	}
	for _, rule := range discounts {
		var existing models.DiscountRule
		if err := models.DB.Where("distributor_id = ? AND min_quantity = ?", distributor.ID, rule.MinQuantity).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&rule).Error; err != nil {
				stdLog.Printf("falha ao criar o desconto min=%d: %v", rule.MinQuantity, err)
			}
		}
	}

	// programa de fidelidade
	minOrder := models.NewMoneyFromDecimal(decimal.NewFromInt(10))
	program := models.LoyaltyProgram{
		DistributorID:     distributor.ID,
		IsEnabled:         true,
		PointsPerOrder:    1,
		RewardThreshold:   10,
		RewardDescription: "1 galão de 20L grátis a cada 10 pedidos",
		MinOrderValue:     &minOrder,
	}
	var existingProgram models.LoyaltyProgram
	if err := models.DB.Where("distributor_id = ?", distributor.ID).First(&existingProgram).Error; err != nil {
		if err := models.DB.Create(&program).Error; err != nil {
			stdLog.Printf("falha ao criar o programa de fidelidade: %v", err)
		}
	}

	fmt.Println("\ndados de demonstração criados com sucesso")
	fmt.Println("- 4 marcas")
	fmt.Println("- 1 distribuidora (agua-azul-distribuidora) com dono e horários")
	fmt.Println("- 4 produtos, 2 faixas de desconto, 1 programa de fidelidade")
	fmt.Println("- 1 cliente de demonstração")
}

func seedUser(stdLog *log.Logger, user models.User, password string) *models.User {
	var existing models.User
	if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		stdLog.Printf("usuário já existe: %s", existing.Email)
		return &existing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("falha ao gerar o hash de senha: %v", err)
		return nil
	}
	user.PasswordHash = string(hash)
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("falha ao criar o usuário %s: %v", user.Email, err)
		return nil
	}
	stdLog.Printf("usuário criado: %s", user.Email)
	return &user
}
