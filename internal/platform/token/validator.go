// Package token validates the HS256 bearer tokens callers present. The
// token's subject claim is the caller's principal address; issuing tokens is
// an operator concern outside this service.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"vaultgate/internal/platform/middleware"
	id "vaultgate/pkg/domain"
)

// Validator checks token signatures and extracts the caller address.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies an HS256 token and returns the caller
// claims. The subject must be a well-formed principal address.
func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("read subject claim: %w", err)
	}
	caller, err := id.ParseAddress(subject)
	if err != nil {
		return nil, fmt.Errorf("subject is not a principal address: %w", err)
	}

	return &middleware.JWTClaims{Caller: caller.String()}, nil
}
