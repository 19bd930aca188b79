// Package auth implements account management and session tokens: email and
// password credentials hashed with bcrypt, HS256 JWT bearer tokens, and
// third-party token exchange for Google and Facebook sign-in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/store"
)

// Service issues and verifies sessions against the user store.
type Service struct {
	store    store.Store
	secret   []byte
	ttl      time.Duration
	google   ProfileVerifier
	facebook ProfileVerifier
	now      func() time.Time
}

// NewService creates an auth service. Either verifier may be nil, which
// disables the corresponding provider.
func NewService(st store.Store, secret string, ttl time.Duration, google, facebook ProfileVerifier) *Service {
	return &Service{
		store:    st,
		secret:   []byte(secret),
		ttl:      ttl,
		google:   google,
		facebook: facebook,
		now:      time.Now,
	}
}

// Credentials is a signup or login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks signup requirements. Validation failures are surfaced
// verbatim to the caller.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(8, 128)),
	)
}

// Signup registers a new email/password account and returns the user with a
// session token. The first account to register claims all unowned rows.
func (s *Service) Signup(ctx context.Context, creds Credentials) (*models.User, string, error) {
	if err := creds.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(creds.Email),
		Name:         strings.TrimSpace(creds.Name),
		Provider:     models.ProviderEmail,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.register(ctx, &u); err != nil {
		return nil, "", err
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

// Login verifies email/password credentials. Every failure mode maps to the
// same generic unauthorized error so callers cannot tell which check failed.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.ErrUnauthorized
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// LoginWithProvider exchanges a third-party token for a session, creating
// the account on first sign-in.
func (s *Service) LoginWithProvider(ctx context.Context, provider models.AuthProvider, token string) (*models.User, string, error) {
	var verifier ProfileVerifier
	switch provider {
	case models.ProviderGoogle:
		verifier = s.google
	case models.ProviderFacebook:
		verifier = s.facebook
	}
	if verifier == nil {
		return nil, "", fmt.Errorf("%w: provider %s not configured", apperr.ErrUnavailable, provider)
	}

	profile, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if profile.Email == "" {
		return nil, "", apperr.ErrUnauthorized
	}

	u, err := s.store.UserByEmail(ctx, normalizeEmail(profile.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		u = &models.User{
			ID:        uuid.NewString(),
			Email:     normalizeEmail(profile.Email),
			Name:      profile.Name,
			Provider:  provider,
			CreatedAt: s.now(),
		}
		if err := s.register(ctx, u); err != nil {
			return nil, "", err
		}
	} else if err != nil {
		return nil, "", err
	}

	session, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, session, nil
}

// Me resolves a bearer token to its user record.
func (s *Service) Me(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return u, nil
}

// VerifyToken validates a session token and returns the user id it carries.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", apperr.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperr.ErrUnauthorized
	}
	return claims.Subject, nil
}

func (s *Service) register(ctx context.Context, u *models.User) error {
	if err := s.store.CreateUser(ctx, *u); err != nil {
		return err
	}
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n == 1 {
		// First account adopts everything created before registration.
		if err := s.store.ClaimUnowned(ctx, u.ID); err != nil {
			return fmt.Errorf("auth: claim unowned rows: %w", err)
		}
	}
	return nil
}

func (s *Service) issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
