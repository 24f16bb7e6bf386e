package cache

import (
	"context"
	"fmt"
	"time"
)

// MarkOnboardingPrompt records that the onboarding prompt was shown for a
// session, returning true only on the first call within the TTL. Without
// redis the prompt is shown every time, which is the safe direction.
func MarkOnboardingPrompt(ctx context.Context, userID uint, sessionID string, ttl time.Duration) (bool, error) {
	if userID == 0 || sessionID == "" {
		return true, nil
	}
	if !Enabled() {
		return true, nil
	}
	key := fmt.Sprintf("onboarding:prompt:%d:%s", userID, sessionID)
	return SetNX(ctx, key, "1", ttl)
}
