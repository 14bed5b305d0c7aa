package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/crm-reports/domain"
)

// Claims is the JWT payload. The session id lets the middleware reject
// tokens whose session was revoked.
type Claims struct {
	SessionID        string `json:"sid"`
	RepresentativeID int64  `json:"rep_id"`
	RoleLevel        int    `json:"role_level"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	issuer string
}

func NewSigner(secret, issuer string) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer}
}

func (s *Signer) Sign(session *domain.Session) (string, error) {
	claims := Claims{
		SessionID:        session.ID,
		RepresentativeID: session.RepresentativeID,
		RoleLevel:        session.RoleLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", session.UserID),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, domain.ErrUnauthorized
	}
	if claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
