package redisservice

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	Prefix          = "srelay:"
	TotalUsageField = "total"
)

type RedisService struct {
	rc       *redis.Client
	usageTTL time.Duration
	logger   *logrus.Entry
}

func New(rc *redis.Client, usageTTL time.Duration, logger *logrus.Logger) *RedisService {
	return &RedisService{
		rc:       rc,
		usageTTL: usageTTL,
		logger:   logger.WithField("service", "redis"),
	}
}
