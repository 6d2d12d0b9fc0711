package infrastructure

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tour-service/internal/domain/providers"
)

// Claims embeds the user id. IssuedAtMs keeps millisecond precision so a
// password change invalidates tokens issued earlier in the same second.
type Claims struct {
	Id         string `json:"id"`
	IssuedAtMs int64  `json:"iat_ms"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewJWTService(secret string, expiresIn time.Duration) *JWTService {
	return &JWTService{
		secretKey: []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (j *JWTService) WithClock(now func() time.Time) *JWTService {
	j.now = now
	return j
}

func (j *JWTService) GenerateToken(userID string) (string, error) {
	issuedAt := j.now()
	claims := &Claims{
		Id:         userID,
		IssuedAtMs: issuedAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTService) VerifyToken(tokenString string) (*providers.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return j.secretKey, nil
		},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Id == "" {
		return nil, errors.New("invalid token")
	}

	return &providers.TokenClaims{
		UserId:   claims.Id,
		IssuedAt: time.UnixMilli(claims.IssuedAtMs),
	}, nil
}
