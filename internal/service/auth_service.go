package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrTokenInvalid = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (token, name string, err error)
	ParseToken(tokenString string) (*Claims, error)
	SeedAdmin(ctx context.Context) error
}

type authService struct {
	users         repository.UserRepository
	secret        string
	tokenTTL      time.Duration
	adminEmail    string
	adminPassword string
	adminName     string
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration, adminEmail, adminPassword, adminName string) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 2 * time.Hour
	}

	return &authService{
		users:         users,
		secret:        secret,
		tokenTTL:      tokenTTL,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		adminName:     adminName,
	}
}

// Login сверяет пароль с bcrypt-хэшом и выдает HS256-токен на tokenTTL.
// Причину отказа наружу не раскрываем: всегда ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.users.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", models.ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, user.Name, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrTokenInvalid)
	}

	return claims, nil
}

// SeedAdmin создает админа из ADMIN_EMAIL/ADMIN_PASSWORD, если его еще нет.
func (s *authService) SeedAdmin(ctx context.Context) error {
	if s.adminEmail == "" || s.adminPassword == "" {
		return nil
	}

	exists, err := s.users.ExistsByEmail(ctx, s.adminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &models.User{
		Name:     s.adminName,
		Email:    s.adminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	log.Printf("Admin user seeded: %s", s.adminEmail)
	return nil
}
