package redisservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TranslationUsageRedisKey = Prefix + "usage:translation"
	usageDayLayout           = "20060102"
)

// TranslationUsageKey returns the hash holding one UTC day of usage.
func TranslationUsageKey(day time.Time) string {
	return fmt.Sprintf("%s:%s", TranslationUsageRedisKey, UsageDay(day))
}

// UsageDay formats the UTC day usage is accounted under.
func UsageDay(day time.Time) string {
	return day.UTC().Format(usageDayLayout)
}

// UpdateTranslationUsage adds incBy translated characters to the user's counter for the day of at.
func (s *RedisService) UpdateTranslationUsage(ctx context.Context, userKey string, incBy int, at time.Time) error {
	key := TranslationUsageKey(at)
	pipe := s.rc.TxPipeline()
	pipe.HIncrBy(ctx, key, userKey, int64(incBy))
	pipe.HIncrBy(ctx, key, TotalUsageField, int64(incBy))
	pipe.Expire(ctx, key, s.usageTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetTranslationUserUsage retrieves the translation usage of a single user key.
func (s *RedisService) GetTranslationUserUsage(ctx context.Context, userKey string, day time.Time) (int64, error) {
	res, err := s.rc.HGet(ctx, TranslationUsageKey(day), userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(res, 10, 64)
}

// GetTranslationDayUsage retrieves every counter of the day, including TotalUsageField.
func (s *RedisService) GetTranslationDayUsage(ctx context.Context, day time.Time) (map[string]int64, error) {
	rawMap, err := s.rc.HGetAll(ctx, TranslationUsageKey(day)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	usageMap := make(map[string]int64, len(rawMap))
	for k, v := range rawMap {
		val, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.logger.WithError(err).Warnf("could not parse translation usage value '%s' for key '%s'", v, k)
			continue
		}
		usageMap[k] = val
	}

	return usageMap, nil
}
