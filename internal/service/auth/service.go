package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/auth"
	"github.com/trialbridge/lead-api/pkg/errors"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
}

type service struct {
	userRepo    repository.UserRepository
	partnerRepo repository.PartnerRepository
	jwt         auth.JWTService
}

func NewService(userRepo repository.UserRepository, partnerRepo repository.PartnerRepository, jwt auth.JWTService) Service {
	return &service{userRepo: userRepo, partnerRepo: partnerRepo, jwt: jwt}
}

// Register signs up a new site. The caller never chooses a role or partner:
// a fresh partner record is created on the free tier and the user is bound
// to it as a partner-role account.
func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, errors.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	orgName := req.Organization
	if orgName == "" {
		orgName = req.Name
	}
	partner := &model.Partner{
		Base:             model.Base{ID: uuid.New()},
		Name:             orgName,
		Email:            req.Email,
		Active:           true,
		MaxLeads:         model.DefaultMaxLeads,
		SubscriptionTier: "free",
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to create partner for registration")
		return nil, errors.Internal("failed to create partner")
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         model.UserRolePartner,
		PartnerID:    &partner.ID,
		Status:       model.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		return nil, errors.Internal("failed to create user")
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	now := time.Now()

	if user.Status == model.UserStatusLocked {
		if now.Sub(user.LastLoginAttempt) < lockoutDuration {
			return nil, errors.Unauthorized("account locked, try again later")
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = now
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
			log.Warn().Str("email", user.Email).Msg("Account locked after repeated failed logins")
		}
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			log.Error().Err(updateErr).Str("email", user.Email).Msg("Failed to record login attempt")
		}
		return nil, errors.Unauthorized("invalid credentials")
	}

	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to record login")
	}

	return s.tokens(user)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}
	if user.Status == model.UserStatusLocked {
		return nil, errors.Unauthorized("account locked")
	}

	return s.tokens(user)
}

func (s *service) tokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Internal("failed to generate token")
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, errors.Internal("failed to generate token")
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessExpiry().Seconds()),
	}, nil
}
