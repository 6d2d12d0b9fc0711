package providers

import "time"

// TokenClaims is what the access guard needs from a verified token.
type TokenClaims struct {
	UserId   string
	IssuedAt time.Time
}

type TokenProvider interface {
	GenerateToken(userID string) (string, error)
	VerifyToken(token string) (*TokenClaims, error)
}
