package security

import (
	"errors"
	"strconv"
	"time"

	"munlink-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// UserClaims are issued by the identity service and read here
type UserClaims struct {
	UserID         int32       `json:"user_id"`
	Email          string      `json:"email,omitempty"`
	Type           TokenType   `json:"type"`
	Role           domain.Role `json:"role"`
	MunicipalityID *int32      `json:"municipality_id,omitempty"`
	BarangayID     *int32      `json:"barangay_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller derived from validated claims.
func (c *UserClaims) Principal() *domain.User {
	return &domain.User{
		ID:             c.UserID,
		Email:          c.Email,
		Role:           c.Role,
		MunicipalityID: c.MunicipalityID,
		BarangayID:     c.BarangayID,
	}
}

type TokenManager interface {
	// GenerateAccessToken exists for tests and local tooling; production
	// tokens are minted by the identity service with the same secret.
	GenerateAccessToken(user *domain.User, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*UserClaims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (m *tokenManager) GenerateAccessToken(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:         user.ID,
		Email:          user.Email,
		Type:           TokenTypeAccess,
		Role:           user.Role,
		MunicipalityID: user.MunicipalityID,
		BarangayID:     user.BarangayID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        gonanoid.Must(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != "" && claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 && claims.Subject != "" {
		uid, _ := strconv.Atoi(claims.Subject)
		claims.UserID = int32(uid)
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		claims.Role = domain.RoleResident
	}
	return claims, nil
}
