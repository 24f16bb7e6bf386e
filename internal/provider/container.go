package provider

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/authz"
	"github.com/aquaponto/aquaponto/internal/cache"
	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/gateway/viacep"
	"github.com/aquaponto/aquaponto/internal/gateway/whatsapp"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/queue"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"
)

// Container dependency injection container
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	UserLoginLogRepo repository.UserLoginLogRepository
	DistributorRepo  repository.DistributorRepository
	ProductRepo      repository.ProductRepository
	DiscountRepo     repository.DiscountRuleRepository
	OrderRepo        repository.OrderRepository
	LoyaltyRepo      repository.LoyaltyRepository
	SubscriptionRepo repository.SubscriptionRepository
	DashboardRepo    repository.DashboardRepository

	// Gateways
	ViaCEPClient   *viacep.Client
	WhatsAppClient *whatsapp.Client

	// Services
	AuthzService        *authz.Service
	UserAuthService     *service.UserAuthService
	DistributorService  *service.DistributorService
	HoursService        *service.HoursService
	PricingService      *service.PricingService
	OrderService        *service.OrderService
	LoyaltyService      *service.LoyaltyService
	SubscriptionService *service.SubscriptionService
	NotificationService *service.NotificationService
	UploadService       *service.UploadService
	DashboardService    *service.DashboardService
}

// NewContainer initializes the container
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initGateways()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.DistributorRepo = repository.NewDistributorRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.DiscountRepo = repository.NewDiscountRuleRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initGateways() {
	c.ViaCEPClient = viacep.NewClient(
		c.Config.ViaCEP.BaseURL,
		time.Duration(c.Config.ViaCEP.TimeoutMS)*time.Millisecond,
	)
	c.WhatsAppClient = whatsapp.NewClient(whatsapp.Config{
		Enabled:      c.Config.WhatsApp.Enabled,
		APIBaseURL:   c.Config.WhatsApp.APIBaseURL,
		APIToken:     c.Config.WhatsApp.APIToken,
		SenderNumber: c.Config.WhatsApp.SenderNumber,
		Timeout:      time.Duration(c.Config.WhatsApp.TimeoutMS) * time.Millisecond,
		MaxRetries:   c.Config.WhatsApp.MaxRetries,
	})
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.HoursService = service.NewHoursService()
	c.PricingService = service.NewPricingService()
	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.UserLoginLogRepo, c.Config.JWT, c.Config.Security)
	c.DistributorService = service.NewDistributorService(
		c.DistributorRepo, c.ProductRepo, c.DiscountRepo,
		c.HoursService, c.PricingService, c.ViaCEPClient,
	)
	c.SubscriptionService = service.NewSubscriptionService(
		c.SubscriptionRepo, c.DistributorRepo,
		c.Config.Stripe, c.Config.Subscription,
	)
	c.OrderService = service.NewOrderService(
		c.OrderRepo, c.ProductRepo, c.DistributorRepo, c.DiscountRepo,
		c.HoursService, c.PricingService, c.SubscriptionService,
		c.QueueClient, c.Config.Order,
	)
	c.LoyaltyService = service.NewLoyaltyService(c.LoyaltyRepo, c.OrderRepo)
	c.NotificationService = service.NewNotificationService(
		c.OrderRepo, c.DistributorRepo, c.UserRepo, c.WhatsAppClient,
	)
	c.UploadService = service.NewUploadService(c.Config)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.SubscriptionRepo)
}
