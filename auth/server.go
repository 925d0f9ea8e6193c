// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Server-side bearer token verification and HTTP middleware, following
// https://modelcontextprotocol.io/specification/2025-06-18/basic/authorization.

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the presented token failed verification: it is
// malformed, has a bad signature, or names an unrecognized issuer.
var ErrInvalidToken = errors.New("invalid token")

// ErrOAuth indicates a malformed request on the OAuth protocol level, as
// opposed to a bad token. A TokenVerifier returns it, and RequireBearerToken
// answers it with 400; a missing Authorization header never reaches the
// verifier and is answered with 401 instead.
var ErrOAuth = errors.New("oauth error")

// TokenInfo is what a TokenVerifier learns about a validated bearer token.
type TokenInfo struct {
	// Expiration is the token's exp claim. verify always rejects a token
	// whose Expiration is the zero Time; no option makes it accept one
	// (RFC 9728 §5.2 requires an exp claim in access tokens).
	Expiration time.Time
	// Scopes lists the scopes the token carries, used to enforce
	// RequireBearerTokenOptions.Scopes.
	Scopes []string
}

// TokenVerifier validates a bearer token extracted from an incoming request
// and returns what it learned. Typical implementations check a JWT's
// signature and claims against a trusted issuer, or call the issuer's
// token-introspection endpoint.
type TokenVerifier func(ctx context.Context, token string, req *http.Request) (*TokenInfo, error)

// RequireBearerTokenOptions configures RequireBearerToken.
type RequireBearerTokenOptions struct {
	// Scopes, if non-empty, must all be present in the token's Scopes for
	// the request to be authorized.
	Scopes []string
	// ResourceMetadataURL, if set, is advertised in the WWW-Authenticate
	// header of 401/403 responses per RFC 9728 §5.1, pointing clients at
	// this resource server's protected-resource metadata document.
	ResourceMetadataURL string
}

func hasAllScopes(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, s := range have {
		set[s] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

// verify extracts and validates the bearer token from req's Authorization
// header. It returns the validated TokenInfo, or a human-readable message
// and HTTP status code to report to the client. A zero-value return
// (nil, "", 0) signals success with no TokenInfo (unreachable in practice,
// since a successful verification always yields a non-nil info).
func verify(req *http.Request, verifier TokenVerifier, opts *RequireBearerTokenOptions) (*TokenInfo, string, int) {
	if opts == nil {
		opts = &RequireBearerTokenOptions{}
	}
	header := req.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, "no bearer token", http.StatusUnauthorized
	}
	token := strings.TrimSpace(header[len(prefix):])

	info, err := verifier(req.Context(), token, req)
	switch {
	case errors.Is(err, ErrOAuth):
		return nil, "oauth error", http.StatusBadRequest
	case errors.Is(err, ErrInvalidToken):
		return nil, "invalid token", http.StatusUnauthorized
	case err != nil:
		return nil, "invalid token", http.StatusUnauthorized
	}

	if info.Expiration.IsZero() {
		return nil, "token missing expiration", http.StatusUnauthorized
	}
	if info.Expiration.Before(time.Now()) {
		return nil, "token expired", http.StatusUnauthorized
	}
	if !hasAllScopes(info.Scopes, opts.Scopes) {
		return nil, "insufficient scope", http.StatusForbidden
	}
	return info, "", 0
}

// NewJWTVerifier returns a TokenVerifier that checks an HMAC-signed JWT's
// signature against key, its issuer against wantIssuer, and extracts its
// exp claim and "scope" claim (a space-separated string, per RFC 8693 §4.2)
// into TokenInfo.
func NewJWTVerifier(key []byte, wantIssuer string) TokenVerifier {
	return func(_ context.Context, token string, _ *http.Request) (*TokenInfo, error) {
		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return key, nil
		}, jwt.WithIssuer(wantIssuer))
		if err != nil || !parsed.Valid {
			return nil, ErrInvalidToken
		}
		info := &TokenInfo{}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			info.Expiration = exp.Time
		}
		if scope, ok := claims["scope"].(string); ok && scope != "" {
			info.Scopes = strings.Fields(scope)
		}
		return info, nil
	}
}

type tokenInfoKey struct{}

// TokenInfoFromContext returns the TokenInfo that RequireBearerToken stashed
// on a successfully authorized request's context, if any.
func TokenInfoFromContext(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey{}).(*TokenInfo)
	return info, ok
}

// RequireBearerToken returns middleware that authorizes every request using
// verifier, rejecting unauthorized requests with 401 or 403 and a
// WWW-Authenticate challenge (RFC 9728 §5.1) before the wrapped handler runs.
// An authorized request reaches the wrapped handler with its headers
// unchanged, Authorization included; the handler's own outbound HTTP calls
// carry the inbound token only if the handler copies it onto them (MCP
// security best practices §2.2).
func RequireBearerToken(verifier TokenVerifier, opts *RequireBearerTokenOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, msg, code := verify(r, verifier, opts)
			if code != 0 {
				if opts != nil && opts.ResourceMetadataURL != "" {
					w.Header().Set("WWW-Authenticate", "Bearer resource_metadata="+opts.ResourceMetadataURL)
				}
				http.Error(w, msg, code)
				return
			}
			ctx := context.WithValue(r.Context(), tokenInfoKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
