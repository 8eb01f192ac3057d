package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/security"
	"learningcenter/services/auth-service/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type RefreshStore interface {
	SaveRefresh(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, tokenID string) (bool, error)
	DeleteRefresh(ctx context.Context, tokenID string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Generate(userID string, roles []string) (string, string, error)
	ValidateRefreshToken(token string) (*security.Claims, error)
	RefreshTTL() time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthUseCase struct {
	userRepo     UserRepository
	tokenCache   RefreshStore
	hasher       PasswordHasher
	tokenManager TokenIssuer
	log          *logger.Logger
}

func NewAuthUseCase(ur UserRepository, tc RefreshStore, h PasswordHasher, tm TokenIssuer, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     ur,
		tokenCache:   tc,
		hasher:       h,
		tokenManager: tm,
		log:          log.With("usecase", "auth"),
	}
}

func (uc *AuthUseCase) SignUp(ctx context.Context, username, password string, roles []string) (*domain.User, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := domain.NewUser(username, hash, roles)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info("user signed up", "user_id", user.ID, "roles", user.Roles)
	return user, nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, username, password string) (*domain.User, TokenPair, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, TokenPair{}, domain.ErrInvalidCredentials
	}
	pair, err := uc.generateAndSaveTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh rotates the refresh token. The presented token is consumed even when the
// user has since been removed.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := uc.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	live, err := uc.tokenCache.ConsumeRefresh(ctx, claims.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if !live {
		uc.log.Warn("revoked refresh token presented", "user_id", claims.Subject)
		return TokenPair{}, domain.ErrTokenRevoked
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenPair{}, security.ErrInvalidToken
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return TokenPair{}, err
	}
	return uc.generateAndSaveTokens(ctx, user)
}

func (uc *AuthUseCase) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := uc.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	if err := uc.tokenCache.DeleteRefresh(ctx, claims.ID); err != nil {
		return err
	}
	uc.log.Info("user signed out", "user_id", claims.Subject)
	return nil
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, refresh, err := uc.tokenManager.Generate(user.ID.String(), user.Roles)
	if err != nil {
		return TokenPair{}, err
	}
	claims, err := uc.tokenManager.ValidateRefreshToken(refresh)
	if err != nil {
		return TokenPair{}, err
	}
	if err := uc.tokenCache.SaveRefresh(ctx, claims.ID, user.ID.String(), uc.tokenManager.RefreshTTL()); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
