package app

import (
  "strings"
  "time"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/utils"
)

type Config struct {
  JWTSecretKey    string
  AccessTokenTTL  time.Duration
  RefreshTokenTTL time.Duration
  AllowOrigins    []string
  UseRedisBus     bool
}

func LoadConfig(log *logger.Logger) Config {
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

  origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
  allowOrigins := []string{}
  for _, o := range strings.Split(origins, ",") {
    o = strings.TrimSpace(o)
    if o != "" {
      allowOrigins = append(allowOrigins, o)
    }
  }

  useRedis := utils.GetEnv("REDIS_ADDR", "", log) != ""

  return Config{
    JWTSecretKey:    jwtSecretKey,
    AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
    RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
    AllowOrigins:    allowOrigins,
    UseRedisBus:     useRedis,
  }
}
