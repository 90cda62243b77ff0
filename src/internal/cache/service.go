package cache

import (
	"context"
	"fmt"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/models"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service is the login-attempt gate in front of credential verification.
// It deliberately holds no session state: revocation must be visible the
// moment the session row is updated, so session reads always hit the store.
type Service interface {
	IsLockedOut(ctx context.Context, username, ipAddress string) (bool, error)
	RegisterFailedLogin(ctx context.Context, username, ipAddress string) error
	ClearFailedLogins(ctx context.Context, username, ipAddress string) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.LockoutConfig
}

const lockoutKeyPattern = "login-failures:%s:%s" // login-failures:username:ip

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Lockout}
}

func (c *cacheService) IsLockedOut(ctx context.Context, username, ipAddress string) (bool, error) {
	key := fmt.Sprintf(lockoutKeyPattern, username, ipAddress)

	count, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to read lockout counter")
		return false, models.ErrRedisGet
	}

	return count >= c.cfg.MaxAttempts, nil
}

func (c *cacheService) RegisterFailedLogin(ctx context.Context, username, ipAddress string) error {
	key := fmt.Sprintf(lockoutKeyPattern, username, ipAddress)
	window := time.Duration(c.cfg.WindowMinutes) * time.Minute

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to increment lockout counter")
		return models.ErrRedisSet
	}

	// Expiry starts from the first failure in the window.
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to set lockout window")
			return models.ErrRedisSet
		}
	}

	if count >= int64(c.cfg.MaxAttempts) {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"ip":       ipAddress,
			"failures": count,
		}).Warn("Login lockout threshold reached")
	}

	return nil
}

func (c *cacheService) ClearFailedLogins(ctx context.Context, username, ipAddress string) error {
	key := fmt.Sprintf(lockoutKeyPattern, username, ipAddress)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to clear lockout counter")
		return models.ErrRedisSet
	}

	return nil
}
