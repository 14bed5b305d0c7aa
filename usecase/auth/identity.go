package auth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/crm-reports/domain"
)

// RepresentativeRole is the identity-provider role required to open a session.
const RepresentativeRole = "insurance_representative"

// IdentityClaims is the assertion issued by the upstream identity provider
// after it has verified the user's credentials. Subject carries the user id.
type IdentityClaims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is a verified upstream user.
type Identity struct {
	UserID int64
	Name   string
	Roles  []string
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// IdentityVerifier checks HS256 assertions signed with the key shared with
// the identity provider.
type IdentityVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewIdentityVerifier returns nil when secret is empty; a UseCase without a
// verifier refuses every login.
func NewIdentityVerifier(secret, issuer, audience string) *IdentityVerifier {
	if secret == "" {
		return nil
	}
	return &IdentityVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

func (v *IdentityVerifier) Verify(assertion string) (*Identity, error) {
	if v == nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity provider not configured", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(assertion) == "" {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity assertion required", domain.ErrUnauthorized)
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid identity assertion", err)
	}
	// Assertions are short-lived; one without an expiry is never accepted.
	if claims.ExpiresAt == nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity assertion has no expiry", domain.ErrUnauthorized)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "unexpected identity issuer", domain.ErrUnauthorized)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "unexpected identity audience", domain.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity assertion has no user id", domain.ErrUnauthorized)
	}
	return &Identity{UserID: userID, Name: strings.TrimSpace(claims.Name), Roles: claims.Roles}, nil
}
