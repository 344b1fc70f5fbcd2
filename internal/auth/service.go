package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown email, wrong password and disabled
// accounts alike; callers must not distinguish them.
var ErrInvalidCredentials = errors.New("credenciales no válidas")

// ErrInvalidRefresh means the refresh token is unknown, revoked or expired.
var ErrInvalidRefresh = errors.New("token de actualización no válido")

// TokenPair holds an access JWT and an opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Service authenticates administrators.
type Service struct {
	repo       *Repository
	issuer     string
	signingKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService builds the auth service.
func NewService(repo *Repository, issuer, signingKey string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		issuer:     issuer,
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies the password, issues a token pair and records login
// telemetry. Telemetry failure never fails the login.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent, deviceUID string) (TokenPair, *Credential, error) {
	cred, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, nil, err
	}
	if cred == nil || !cred.Estado {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, cred)
	if err != nil {
		return TokenPair{}, nil, err
	}

	if err := s.repo.RecordLogin(ctx, cred.ID, ip, userAgent, deviceUID); err != nil {
		log.Printf("record login for user %d failed: %v", cred.ID, err)
	}

	return pair, cred, nil
}

// Refresh rotates a refresh token: the old one is revoked and a fresh pair is
// issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	rt, err := s.repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if rt == nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		return TokenPair{}, ErrInvalidRefresh
	}

	cred, err := s.repo.FindUserByID(ctx, rt.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if cred == nil || !cred.Estado {
		return TokenPair{}, ErrInvalidRefresh
	}

	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(ctx, cred)
}

func (s *Service) issuePair(ctx context.Context, cred *Credential) (TokenPair, error) {
	access, accessExp, err := IssueAccess(cred.ID, cred.Name, s.issuer, s.signingKey, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh := uuid.NewString()
	refreshExp := time.Now().Add(s.refreshTTL)
	if err := s.repo.SaveRefreshToken(ctx, cred.ID, refresh, refreshExp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
