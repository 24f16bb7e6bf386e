package router

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/cache"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/provider"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// SubscriptionGateMiddleware blocks distributor dashboard routes until the
// tenant is onboarded and holds an active subscription. The onboarding
// prompt is deduplicated per token so the dashboard nags once, not on
// every request.
func SubscriptionGateMiddleware(c *provider.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userIDRaw, exists := ctx.Get("user_id")
		if !exists {
			response.Unauthorized(ctx, "não autenticado")
			ctx.Abort()
			return
		}
		userID, _ := userIDRaw.(uint)
		if userID == 0 {
			response.Unauthorized(ctx, "não autenticado")
			ctx.Abort()
			return
		}

		distributor, err := c.DistributorService.GetByUserID(userID)
		if err != nil {
			response.Error(ctx, response.CodeInternal, "falha ao carregar a distribuidora")
			ctx.Abort()
			return
		}
		if distributor == nil {
			respondOnboardingRequired(ctx, c, userID)
			return
		}

		decision, err := c.SubscriptionService.Evaluate(distributor.ID, time.Now())
		if err != nil {
			response.Error(ctx, response.CodeInternal, "falha ao consultar a assinatura")
			ctx.Abort()
			return
		}
		switch decision.Decision {
		case service.AccessGranted:
			ctx.Set("distributor_id", distributor.ID)
			ctx.Next()
		case service.AccessOnboardingRequired:
			respondOnboardingRequired(ctx, c, userID)
		default:
			response.ErrorWithData(ctx, response.CodeSubscriptionRequired,
				service.ErrSubscriptionRequired.Error(), gin.H{
					"decision":     decision.Decision,
					"subscription": decision.Subscription,
				})
			ctx.Abort()
		}
	}
}

func respondOnboardingRequired(ctx *gin.Context, c *provider.Container, userID uint) {
	prompt := true
	sessionID := ""
	if tokenID, ok := ctx.Get("token_id"); ok {
		sessionID, _ = tokenID.(string)
	}
	if sessionID != "" {
		ttl := time.Duration(c.Config.Subscription.PromptTTLHours) * time.Hour
		first, err := cache.MarkOnboardingPrompt(ctx.Request.Context(), userID, sessionID, ttl)
		if err != nil {
			logger.Warnw("onboarding_prompt_mark_failed", "user_id", userID, "error", err)
		} else {
			prompt = first
		}
	}
	response.ErrorWithData(ctx, response.CodeOnboardingRequired,
		"complete o cadastro da distribuidora", gin.H{
			"decision": service.AccessOnboardingRequired,
			"prompt":   prompt,
		})
	ctx.Abort()
}
