// Package siteadmin manages the single owner login of each website. Its
// tokens are signed with their own secret and name one website, so they
// cannot reach another tenant or any platform operation.
package siteadmin

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/domain"
)

// MinPasswordLength is enforced before hashing.
const MinPasswordLength = 8

var (
	ErrNotConfigured      = errors.New("siteadmin: no credential configured")
	ErrInvalidCredentials = errors.New("siteadmin: invalid credentials")
)

// Info is the non-secret view of a credential.
type Info struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is a verified site-admin access token.
type Session struct {
	WebsiteID   uuid.UUID `json:"websiteId"`
	WebsiteSlug string    `json:"websiteSlug"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Service struct {
	admins     domain.SiteAdminRepository
	websites   domain.WebsiteRepository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(admins domain.SiteAdminRepository, websites domain.WebsiteRepository, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		admins:     admins,
		websites:   websites,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Upsert creates the website's credential or replaces it. Replacing it
// invalidates every token issued before.
func (s *Service) Upsert(ctx context.Context, websiteID uuid.UUID, email, password, confirm string) (*Info, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", domain.Invalid("email", "must be a valid email address"))
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", domain.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength)))
	}
	if password != confirm {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", domain.Invalid("confirmPassword", "does not match password"))
	}
	if _, err := s.websites.GetByID(ctx, websiteID); err != nil {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", err)
	}

	a := &domain.SiteAdmin{
		WebsiteID:    websiteID,
		Email:        email,
		PasswordHash: hash,
		UpdatedAt:    s.now(),
	}
	if err := s.admins.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("siteadmin.Upsert: %w", err)
	}
	return &Info{Email: a.Email, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}, nil
}

// Info returns the credential's email and timestamps, or ErrNotConfigured.
func (s *Service) Info(ctx context.Context, websiteID uuid.UUID) (*Info, error) {
	a, err := s.admins.GetByWebsite(ctx, websiteID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("siteadmin.Info: %w", ErrNotConfigured)
	}
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Info: %w", err)
	}
	return &Info{Email: a.Email, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}, nil
}

func (s *Service) Delete(ctx context.Context, websiteID uuid.UUID) error {
	err := s.admins.Delete(ctx, websiteID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("siteadmin.Delete: %w", ErrNotConfigured)
	}
	if err != nil {
		return fmt.Errorf("siteadmin.Delete: %w", err)
	}
	return nil
}

// gate loads the website and enforces its access flags.
func (s *Service) gate(find func() (*domain.Website, error)) (*domain.Website, error) {
	w, err := find()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, domain.ErrInactiveWebsite
	}
	if !w.IsAdminEnabled {
		return nil, domain.ErrAdminDisabled
	}
	return w, nil
}

// Login checks the website's flags first, then the credential. Unknown
// websites and unknown emails both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, websiteSlug, email, password string) (*auth.TokenPair, error) {
	w, err := s.gate(func() (*domain.Website, error) { return s.websites.GetBySlug(ctx, websiteSlug) })
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Login: %w", err)
	}

	a, err := s.admins.GetByWebsite(ctx, w.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("siteadmin.Login: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Login: %w", err)
	}
	if a.Email != normalizeEmail(email) || !auth.VerifyPassword(password, a.PasswordHash) {
		return nil, fmt.Errorf("siteadmin.Login: %w", ErrInvalidCredentials)
	}

	access, err := s.sign(a, auth.TokenTypeSiteAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Login: %w", err)
	}
	refresh, err := s.sign(a, auth.TokenTypeSiteRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Login: %w", err)
	}
	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL),
	}, nil
}

func (s *Service) sign(a *domain.SiteAdmin, tokenType string, ttl time.Duration) (string, error) {
	return auth.Sign(s.secret, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: a.Email},
		WebsiteID:        a.WebsiteID.String(),
		Email:            a.Email,
		Credential:       fingerprint(a),
		TokenType:        tokenType,
	}, auth.IssuerSite, ttl)
}

// fingerprint changes on every Upsert because each hash carries a fresh salt.
func fingerprint(a *domain.SiteAdmin) string {
	sum := blake2b.Sum256([]byte(a.PasswordHash))
	return hex.EncodeToString(sum[:16])
}

// Verify validates an access token against the current state: the website
// must still be active with admin enabled, and the credential must be the
// one the token was issued for.
func (s *Service) Verify(ctx context.Context, token string) (*Session, error) {
	sess, _, err := s.verify(ctx, token, auth.TokenTypeSiteAccess)
	return sess, err
}

func (s *Service) verify(ctx context.Context, token, tokenType string) (*Session, *domain.SiteAdmin, error) {
	claims, err := auth.ValidateTyped(s.secret, token, auth.IssuerSite, tokenType)
	if err != nil {
		return nil, nil, fmt.Errorf("siteadmin.Verify: %w", err)
	}
	websiteID, err := uuid.Parse(claims.WebsiteID)
	if err != nil {
		return nil, nil, fmt.Errorf("siteadmin.Verify: %w", auth.ErrInvalidToken)
	}

	w, err := s.gate(func() (*domain.Website, error) { return s.websites.GetByID(ctx, websiteID) })
	if err != nil {
		return nil, nil, fmt.Errorf("siteadmin.Verify: %w", err)
	}

	a, err := s.admins.GetByWebsite(ctx, websiteID)
	if err != nil {
		return nil, nil, fmt.Errorf("siteadmin.Verify: %w", auth.ErrInvalidToken)
	}
	if a.Email != claims.Email || claims.Credential != fingerprint(a) {
		return nil, nil, fmt.Errorf("siteadmin.Verify: credential replaced: %w", auth.ErrInvalidToken)
	}

	return &Session{
		WebsiteID:   websiteID,
		WebsiteSlug: w.Slug,
		Email:       a.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, a, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is returned unchanged.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	_, a, err := s.verify(ctx, refreshToken, auth.TokenTypeSiteRefresh)
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Refresh: %w", err)
	}
	access, err := s.sign(a, auth.TokenTypeSiteAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("siteadmin.Refresh: %w", err)
	}
	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(s.accessTTL),
	}, nil
}
