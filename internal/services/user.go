package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/config"
	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
	"github.com/freshmart/storefront/pkg/sendgrid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo      repository.UserRepository
	rateLimit repository.RateLimitRepository
	email     sendgrid.EmailService
	security  *config.Security
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, email sendgrid.EmailService, security *config.Security) *UserService {
	return &UserService{
		repo:      repo,
		rateLimit: rateLimit,
		email:     email,
		security:  security,
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	existingUser, _ := s.repo.GetUserByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, apperrors.DuplicateEntryError("Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to create user").WithError(err)
	}

	// The account is created either way; the welcome mail is best-effort
	// and must not block or fail the registration response.
	go s.sendActivationEmail(user)

	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, apperrors.InternalError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.security.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.security.JWTKey))
	if err != nil {
		return nil, apperrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(s.security.TokenExpiry.Seconds()),
	}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *UserService) sendActivationEmail(user *models.User) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := &models.EmailNotificationRequest{
		To:      user.Email,
		Subject: "Welcome to FreshMart",
		Content: fmt.Sprintf("Hi %s, your account is ready. Happy shopping!", user.Name),
	}

	if err := s.email.Send(ctx, req); err != nil {
		middleware.LoggerFromContext(ctx).Error("Failed to send activation email",
			slog.String("email", user.Email), slog.Any("error", err))
	}
}
