package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// TokenClaims is the payload of an API token.
type TokenClaims struct {
	UserID    int64    `json:"uid"`
	TokenName string   `json:"token_name"`
	Abilities []string `json:"abilities,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    ports.UserRepository
	notifier Notifier
	secret   []byte
	ttl      time.Duration
}

func NewAuthService(users ports.UserRepository, notifier Notifier, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, notifier: notifier, secret: []byte(secret), ttl: ttl}
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

type LoginRequest struct {
	Email     string
	Password  string
	TokenName string
	Abilities []string
}

// Login checks the credentials and issues a signed token. Unknown emails and
// wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(user, req.TokenName, req.Abilities)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResendVerification never reports whether the email exists.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.WithError(err).Warn("failed to look up user for verification")
		}
		return nil
	}
	if user.HasVerifiedEmail() {
		return nil
	}

	notify(ctx, s.notifier, user.ID, domain.NotificationVerifyMail, map[string]interface{}{
		"email": user.Email,
	})
	log.WithField("user_id", user.ID).Info("verification notification requested")
	return nil
}

// Authenticate validates a token and loads its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidToken
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *AuthService) issue(user *domain.User, name string, abilities []string) (string, error) {
	if len(abilities) == 0 {
		abilities = []string{"*"}
	}

	now := time.Now()
	claims := TokenClaims{
		UserID:    user.ID,
		TokenName: name,
		Abilities: abilities,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Can reports whether the token grants an ability. Tokens issued without
// abilities are unrestricted.
func (c *TokenClaims) Can(ability string) bool {
	if len(c.Abilities) == 0 {
		return true
	}
	for _, a := range c.Abilities {
		if a == "*" || a == ability {
			return true
		}
	}
	return false
}
