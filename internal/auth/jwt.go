package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types. Site-admin tokens use their own types and signing secret, so
// they never pass platform validation and vice versa.
const (
	TokenTypeAccess      = "access"
	TokenTypeRefresh     = "refresh"
	TokenTypeSiteAccess  = "site_access"
	TokenTypeSiteRefresh = "site_refresh"
)

const (
	IssuerPlatform = "folio"
	IssuerSite     = "folio-site"
)

// Claims holds the JWT token payload. WebsiteID and Credential are set only
// on site-admin tokens; Credential fingerprints the credential the token was
// issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"uid,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	WebsiteID  string `json:"wid,omitempty"`
	Credential string `json:"cred,omitempty"`
	TokenType  string `json:"typ"`
}

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// IssueAccessToken creates a signed platform access token.
func IssueAccessToken(secret string, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	return Sign(secret, Claims{UserID: userID.String(), Role: role, TokenType: TokenTypeAccess}, IssuerPlatform, ttl)
}

// IssueRefreshToken creates a signed platform refresh token.
func IssueRefreshToken(secret string, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	return Sign(secret, Claims{UserID: userID.String(), Role: role, TokenType: TokenTypeRefresh}, IssuerPlatform, ttl)
}

// Sign stamps issuer, issue and expiry times onto c and signs it with HS256.
func Sign(secret string, c Claims, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	c.Issuer = issuer
	c.ID = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.Sign: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT token string. Returns the embedded claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// ValidateTyped validates the token and requires the given issuer and type.
func ValidateTyped(secret, tokenString, issuer, tokenType string) (*Claims, error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Issuer != issuer || claims.TokenType != tokenType {
		return nil, fmt.Errorf("auth.ValidateTyped: %w", ErrInvalidToken)
	}
	return claims, nil
}
