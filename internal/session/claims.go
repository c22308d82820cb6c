package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the subset of the token payload the client inspects.
// Signature verification is deliberately absent: the client only reads
// claims, the backend is the authority on validity.
type tokenClaims struct {
	Username string
	IsAdmin  bool
	// Exp is the expiry in unix seconds, 0 when the claim is absent.
	Exp int64
}

// decodeClaims parses the token payload without verifying the signature.
func decodeClaims(token string) (*tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	tc := &tokenClaims{}
	if v, ok := claims["username"].(string); ok {
		tc.Username = v
	}
	if v, ok := claims["is_admin"].(bool); ok {
		tc.IsAdmin = v
	}
	if v, ok := claims["exp"].(float64); ok {
		tc.Exp = int64(v)
	}
	return tc, nil
}

// expired reports whether the exp claim lies in the past. A token without
// an exp claim never counts as expired here; the backend still rejects it
// if it must.
func (c *tokenClaims) expired(nowUnixMilli int64) bool {
	return c.Exp != 0 && c.Exp*1000 < nowUnixMilli
}
