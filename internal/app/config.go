package app

import (
	"time"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
	"github.com/yungbote/virtual-client-backend/internal/utils"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	BreakerFailureThreshold int
	BreakerCoolDown         time.Duration

	RateLimit services.RateLimiterConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	breakerThreshold := utils.GetEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5, log)
	breakerCoolDownSeconds := utils.GetEnvAsInt("BREAKER_COOLDOWN_SECONDS", 30, log)

	userLimit := utils.GetEnvAsInt("RATE_LIMIT_USER_MAX", 20, log)
	userWindowSeconds := utils.GetEnvAsInt("RATE_LIMIT_USER_WINDOW_SECONDS", 60, log)
	globalLimit := utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_MAX", 200, log)
	globalWindowSeconds := utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_WINDOW_SECONDS", 60, log)

	return Config{
		JWTSecretKey:            jwtSecretKey,
		AccessTokenTTL:          time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL:         time.Duration(refreshTokenTTLSeconds) * time.Second,
		BreakerFailureThreshold: breakerThreshold,
		BreakerCoolDown:         time.Duration(breakerCoolDownSeconds) * time.Second,
		RateLimit: services.RateLimiterConfig{
			UserLimit:    userLimit,
			UserWindow:   time.Duration(userWindowSeconds) * time.Second,
			GlobalLimit:  globalLimit,
			GlobalWindow: time.Duration(globalWindowSeconds) * time.Second,
		},
	}
}
