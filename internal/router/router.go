package router

import (
	"github.com/aquaponto/aquaponto/internal/cache"
	"github.com/aquaponto/aquaponto/internal/config"
	adminhandlers "github.com/aquaponto/aquaponto/internal/http/handlers/admin"
	distributorhandlers "github.com/aquaponto/aquaponto/internal/http/handlers/distributor"
	publichandlers "github.com/aquaponto/aquaponto/internal/http/handlers/public"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP engine and registers every route
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	r.Static("/uploads", "./uploads")

	publicHandler := publichandlers.New(c)
	distributorHandler := distributorhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	jwtAuth := JWTAuthMiddleware(c.UserAuthService)
	rbac := RBACMiddleware(c.AuthzService)
	gate := SubscriptionGateMiddleware(c)

	loginRule := RateLimitRule{
		Prefix:        "ratelimit:login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	registerRule := RateLimitRule{
		Prefix:        "ratelimit:register",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	apiV1 := r.Group("/api/v1")
	{
		// public storefront and guest order flow
		apiV1.GET("/storefronts", publicHandler.StorefrontList)
		apiV1.GET("/cep/:cep", publicHandler.CEPLookup)
		apiV1.GET("/storefront/:slug", publicHandler.Storefront)
		apiV1.GET("/storefront/:slug/slots", publicHandler.StorefrontSlots)
		apiV1.POST("/orders", publicHandler.GuestOrderCreate)
		apiV1.GET("/orders/track", publicHandler.GuestOrderTrack)

		// billing webhooks (signature-verified, never authenticated)
		apiV1.POST("/webhooks/stripe", publicHandler.StripeWebhook)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register",
				RateLimitMiddleware(cache.Client(), registerRule, KeyByIP),
				publicHandler.Register)
			auth.POST("/login",
				RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")),
				publicHandler.Login)
		}

		me := apiV1.Group("/me", jwtAuth)
		{
			me.GET("", publicHandler.Me)
			me.PUT("", publicHandler.UpdateProfile)
			me.PUT("/password", publicHandler.ChangePassword)
		}

		customer := apiV1.Group("/customer", jwtAuth, rbac)
		{
			customer.POST("/orders", publicHandler.CustomerOrderCreate)
			customer.GET("/orders", publicHandler.CustomerOrderList)
			customer.GET("/orders/:id", publicHandler.CustomerOrderGet)
			customer.GET("/loyalty/balances", publicHandler.LoyaltyBalances)
			customer.POST("/loyalty/redeem", publicHandler.LoyaltyRedeem)
		}

		distributor := apiV1.Group("/distributor", jwtAuth, rbac)
		{
			// reachable before the subscription gate: onboarding, profile
			// and the billing endpoints that fix a blocked account
			distributor.POST("/onboarding", distributorHandler.Onboard)
			distributor.GET("/profile", distributorHandler.GetProfile)
			distributor.PUT("/profile", distributorHandler.UpdateProfile)
			distributor.GET("/subscription", distributorHandler.SubscriptionStatus)
			distributor.POST("/subscription/checkout", distributorHandler.SubscriptionCheckout)
			distributor.POST("/subscription/portal", distributorHandler.SubscriptionPortal)

			gated := distributor.Group("", gate)
			{
				gated.PUT("/active", distributorHandler.SetActive)
				gated.GET("/hours", distributorHandler.GetHours)
				gated.PUT("/hours", distributorHandler.ReplaceHours)

				gated.GET("/products", distributorHandler.ListProducts)
				gated.POST("/products", distributorHandler.CreateProduct)
				gated.PUT("/products/:id", distributorHandler.UpdateProduct)
				gated.DELETE("/products/:id", distributorHandler.DeleteProduct)

				gated.GET("/discounts", distributorHandler.ListDiscountRules)
				gated.POST("/discounts", distributorHandler.CreateDiscountRule)
				gated.PUT("/discounts/:id", distributorHandler.UpdateDiscountRule)
				gated.DELETE("/discounts/:id", distributorHandler.DeleteDiscountRule)

				gated.GET("/orders", distributorHandler.ListOrders)
				gated.GET("/orders/:id", distributorHandler.GetOrder)
				gated.PUT("/orders/:id/status", distributorHandler.UpdateOrderStatus)

				gated.GET("/loyalty/program", distributorHandler.GetLoyaltyProgram)
				gated.PUT("/loyalty/program", distributorHandler.UpsertLoyaltyProgram)
				gated.GET("/loyalty/redemptions", distributorHandler.ListRedemptions)

				gated.POST("/upload", distributorHandler.Upload)
			}
		}

		admin := apiV1.Group("/admin", jwtAuth, rbac)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/distributors", adminHandler.ListDistributors)
			admin.GET("/distributors/:id", adminHandler.GetDistributor)
			admin.PUT("/distributors/:id/active", adminHandler.SetDistributorActive)
			admin.GET("/subscriptions", adminHandler.SubscriptionCounts)
			admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
			admin.GET("/login-logs", adminHandler.ListLoginLogs)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
