// Package kiosktoken validates the bearer tokens kiosks present. Tokens are
// minted by the identity provider; Sign exists for tests and local tooling.
package kiosktoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "checkin/pkg/domain-errors"
	authmw "checkin/pkg/platform/middleware/auth"
)

// Claims are the JWT claims of a kiosk token. The subject is the caller id.
type Claims struct {
	PersonIDs    []int64 `json:"person_ids,omitempty"`
	LocationIDs  []int64 `json:"location_ids,omitempty"`
	AllPersons   bool    `json:"all_persons,omitempty"`
	AllLocations bool    `json:"all_locations,omitempty"`
	jwt.RegisteredClaims
}

// Service validates HMAC-signed kiosk tokens for one issuer and audience.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Sign issues a token for subject with the given grants.
func (s *Service) Sign(subject string, grants Claims, expiresIn time.Duration) (string, error) {
	now := time.Now()
	grants.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Audience:  []string{s.audience},
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, grants).SignedString(s.signingKey)
}

// Validate parses tokenString and checks signature, expiry, issuer and audience.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken satisfies authmw.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		Subject:      claims.Subject,
		PersonIDs:    claims.PersonIDs,
		LocationIDs:  claims.LocationIDs,
		AllPersons:   claims.AllPersons,
		AllLocations: claims.AllLocations,
	}, nil
}
