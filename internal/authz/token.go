package authz

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator parses HMAC-signed bearer tokens into actors. Capabilities
// ride in a "cap" claim so the gate can answer without a directory lookup.
type TokenValidator struct {
	signingKey []byte
}

func NewTokenValidator(signingKey string) *TokenValidator {
	return &TokenValidator{signingKey: []byte(signingKey)}
}

type tokenClaims struct {
	Capabilities []string `json:"cap"`
	jwt.RegisteredClaims
}

// ValidateToken verifies the signature and expiry and returns the actor.
func (v *TokenValidator) ValidateToken(tokenString string) (Actor, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Actor{}, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return Actor{}, fmt.Errorf("token missing subject")
	}
	return Actor{ID: claims.Subject, Capabilities: claims.Capabilities}, nil
}
