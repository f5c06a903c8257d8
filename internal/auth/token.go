package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingToken = errors.New("missing bearer token")

type tokenKey struct{}

// WithToken stores the caller's bearer token so outgoing travel API calls can
// forward it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type serviceKey struct{}

// AsService marks ctx as a background job that calls the travel API with the
// service token. User requests never carry this mark.
func AsService(ctx context.Context) context.Context {
	return context.WithValue(ctx, serviceKey{}, true)
}

func IsService(ctx context.Context) bool {
	service, _ := ctx.Value(serviceKey{}).(bool)
	return service
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// SubjectReader resolves the user id ("sub" claim) of an access token.
type SubjectReader struct {
	secret []byte
	parser *jwt.Parser
}

// NewSubjectReader verifies HS256 signatures when secret is non-empty. With an
// empty secret the claims are read without verification; the travel API is
// still the one that authorises every call made with the token.
func NewSubjectReader(secret string) *SubjectReader {
	return &SubjectReader{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (r *SubjectReader) Subject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}

	if len(r.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			return "", fmt.Errorf("parse token: %w", err)
		}
	} else {
		if _, err := r.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
			return r.secret, nil
		}); err != nil {
			return "", fmt.Errorf("verify token: %w", err)
		}
	}

	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// Verifies reports whether signatures are checked.
func (r *SubjectReader) Verifies() bool {
	return len(r.secret) > 0
}
