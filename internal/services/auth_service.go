package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// Register creates a citizen or police account. photo is optional and
	// only kept for citizens.
	Register(ctx context.Context, request *validators.RegisterRequest, photo *UploadedFile) (*AuthResult, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

type AuthResult struct {
	Token string
	User  *models.User
}

type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	MaxLoginAttempts int
	LockoutTime      time.Duration
	BcryptCost       int
}

// LockoutError is returned while an identifier is locked after repeated
// failed logins. It matches ErrTooManyAttempts.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *LockoutError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

type authService struct {
	users    interfaces.UserRepository
	cache    CacheService
	evidence EvidenceService
	config   AuthConfig
	// dummyHash keeps unknown-identifier logins as slow as wrong passwords.
	dummyHash []byte
	logger    *logger.Logger
}

func NewAuthService(
	users interfaces.UserRepository,
	cache CacheService,
	evidence EvidenceService,
	config AuthConfig,
	logger *logger.Logger,
) AuthService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = utils.JWTAccessTokenTTL
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("kaavalcircle-dummy"), config.BcryptCost)

	return &authService{
		users:     users,
		cache:     cache,
		evidence:  evidence,
		config:    config,
		dummyHash: dummy,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.RegisterRequest, photo *UploadedFile) (*AuthResult, error) {
	if err := validators.ValidateRegister(request).Err(); err != nil {
		return nil, err
	}

	user := &models.User{
		UserType: models.UserType(request.UserType),
		Name:     request.Name,
		Phone:    request.Phone,
		Email:    request.Email,
		Address:  request.Address,
		Age:      request.Age,
		AadharNo: request.AadharNo,
		Gender:   request.Gender,
	}
	if user.IsPolice() {
		user.StationName = request.StationName
		user.BatchNo = request.BatchNo
	}

	existing, err := s.users.GetByIdentifier(ctx, user.UserType, user.LoginIdentifier())
	if err == nil && existing != nil {
		metrics.RecordAuth("register", false)
		return nil, ErrConflict
	}
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)

	if photo != nil && !user.IsPolice() {
		url, err := s.evidence.StorePhoto(ctx, photo)
		if err != nil {
			return nil, err
		}
		user.Photo = url
	}

	if err := s.users.Create(ctx, user); err != nil {
		if user.Photo != "" {
			s.evidence.Discard(ctx, []string{user.Photo})
		}
		if errors.Is(err, interfaces.ErrDuplicate) {
			metrics.RecordAuth("register", false)
			return nil, ErrConflict
		}
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID, string(user.UserType), s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.RecordAuth("register", true)
	s.cache.CacheUser(ctx, user)
	s.logger.LogUserAction(user.ID, "register", map[string]interface{}{"user_type": user.UserType})

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error) {
	if err := validators.ValidateLogin(request).Err(); err != nil {
		return nil, err
	}

	userType := models.UserType(request.UserType)
	key := request.UserType + ":" + request.Identifier

	if err := s.checkLockout(ctx, key); err != nil {
		metrics.RecordAuth("login", false)
		return nil, err
	}

	user, err := s.users.GetByIdentifier(ctx, userType, request.Identifier)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(request.Password)) != nil || user == nil {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	s.cache.ResetFailedLogins(ctx, key)
	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to update last login")
	}

	token, err := utils.GenerateToken(user.ID, string(user.UserType), s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.RecordAuth("login", true)
	s.cache.CacheUser(ctx, user)
	s.logger.WithUserID(user.ID).Info("User logged in successfully")

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	if user, ok := s.cache.GetCachedUser(ctx, userID); ok {
		return user, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, notFound("User")
		}
		return nil, err
	}
	s.cache.CacheUser(ctx, user)
	return user, nil
}

func (s *authService) checkLockout(ctx context.Context, key string) error {
	if s.config.MaxLoginAttempts <= 0 {
		return nil
	}
	count, ttl, err := s.cache.FailedLogins(ctx, key)
	if err != nil {
		// The counter store being down must not block logins.
		s.logger.WithError(err).Warn("Failed to read login attempts")
		return nil
	}
	if count >= int64(s.config.MaxLoginAttempts) {
		return &LockoutError{RetryAfter: ttl}
	}
	return nil
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	metrics.RecordAuth("login", false)
	count, err := s.cache.RecordFailedLogin(ctx, key, s.config.LockoutTime)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
		return
	}
	if s.config.MaxLoginAttempts > 0 && count == int64(s.config.MaxLoginAttempts) {
		s.logger.LogSecurityEvent("login_lockout", "medium", map[string]interface{}{
			"identifier": key,
			"attempts":   count,
		})
	}
}
