package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/utils"
	"kaavalcircle/pkg/cache"
	"kaavalcircle/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cache is the key/value backend, satisfied by *cache.RedisCache.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementWithExpiry(ctx context.Context, key string, expiration time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
	GetTTL(ctx context.Context, key string) (time.Duration, error)
}

// CacheService holds the user profile cache and the failed login counters.
// Without a backend every call is a no-op, so nothing is cached and logins
// are never locked out.
type CacheService interface {
	CacheUser(ctx context.Context, user *models.User)
	GetCachedUser(ctx context.Context, userID primitive.ObjectID) (*models.User, bool)
	InvalidateUser(ctx context.Context, userID primitive.ObjectID)

	// FailedLogins returns the current failure count for an identifier and
	// how long until the counter expires.
	FailedLogins(ctx context.Context, identifier string) (int64, time.Duration, error)
	RecordFailedLogin(ctx context.Context, identifier string, window time.Duration) (int64, error)
	ResetFailedLogins(ctx context.Context, identifier string)
	Enabled() bool
}

type cacheService struct {
	cache   Cache
	userTTL time.Duration
	logger  *logger.Logger
}

func NewCacheService(c Cache, userTTL time.Duration, log *logger.Logger) CacheService {
	return &cacheService{
		cache:   c,
		userTTL: userTTL,
		logger:  log,
	}
}

func (s *cacheService) Enabled() bool {
	return s.cache != nil
}

func userKey(userID primitive.ObjectID) string {
	return utils.CacheUserPrefix + userID.Hex()
}

func loginKey(identifier string) string {
	return utils.CacheLoginAttemptPrefix + identifier
}

func (s *cacheService) CacheUser(ctx context.Context, user *models.User) {
	if s.cache == nil || user == nil {
		return
	}
	if err := s.cache.Set(ctx, userKey(user.ID), user, s.userTTL); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to cache user")
	}
}

func (s *cacheService) GetCachedUser(ctx context.Context, userID primitive.ObjectID) (*models.User, bool) {
	if s.cache == nil {
		return nil, false
	}

	var user models.User
	if err := s.cache.Get(ctx, userKey(userID), &user); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).WithUserID(userID).Warn("Failed to read cached user")
		}
		return nil, false
	}
	return &user, true
}

func (s *cacheService) InvalidateUser(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userKey(userID)); err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to invalidate cached user")
	}
}

func (s *cacheService) FailedLogins(ctx context.Context, identifier string) (int64, time.Duration, error) {
	if s.cache == nil {
		return 0, 0, nil
	}

	count, err := s.cache.GetInt(ctx, loginKey(identifier))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count == 0 {
		return 0, 0, nil
	}

	ttl, err := s.cache.GetTTL(ctx, loginKey(identifier))
	if err != nil {
		return count, 0, fmt.Errorf("failed to read login lockout ttl: %w", err)
	}
	return count, ttl, nil
}

func (s *cacheService) RecordFailedLogin(ctx context.Context, identifier string, window time.Duration) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	count, err := s.cache.IncrementWithExpiry(ctx, loginKey(identifier), window)
	if err != nil {
		return 0, fmt.Errorf("failed to record login attempt: %w", err)
	}
	return count, nil
}

func (s *cacheService) ResetFailedLogins(ctx context.Context, identifier string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, loginKey(identifier)); err != nil {
		s.logger.WithError(err).Warn("Failed to reset login attempts")
	}
}
