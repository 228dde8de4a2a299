package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// ProfileClaims represents the JWT claims carried by wallet profile tokens.
// ProfileType travels in the token so consent routing can branch on child
// accounts without an extra profile lookup per request.
type ProfileClaims struct {
	ProfileID   string `json:"profile_id"`
	ProfileType string `json:"profile_type"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey string, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// GenerateProfileToken mints a signed token for the given profile.
func (s *JWTService) GenerateProfileToken(profileID id.ProfileID, profileType id.ProfileType, displayName string) (string, error) {
	now := time.Now()
	claims := ProfileClaims{
		ProfileID:   profileID.String(),
		ProfileType: string(profileType),
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   profileID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to sign token", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a profile token.
func (s *JWTService) ValidateToken(tokenString string) (*ProfileClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ProfileClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}

	claims, ok := parsed.Claims.(*ProfileClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token claims")
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token issuer")
	}

	if !id.ProfileType(claims.ProfileType).IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid profile type claim")
	}

	return claims, nil
}
