package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// IdentityClaims are the JWT claims carried by the identity cookie the
// HTTP layer issues after a login or an impersonation switch.
type IdentityClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid"`
	Role string `json:"role,omitempty"`
}

// TokenService mints and validates identity tokens.
type TokenService struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
}

// NewTokenService creates a new TokenService instance. tokenExpiration
// is in hours.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
	}
}

// Generate signs a token for the given user's identity.
func (ts *TokenService) Generate(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID:  user.ID.String(),
		Role: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		ts.logger.Error("token signing failed: %v", err)
		return "", errors.Wrap(err, errors.CategoryInternal, "could not sign identity token")
	}

	return signed, nil
}

// Validate parses and verifies a raw token, returning its claims.
func (ts *TokenService) Validate(raw string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized)
		}
		return ts.signingKey, nil
	})

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid identity token").
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		return nil, errors.New("invalid identity token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	return claims, nil
}
