package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nickyhof/RecordGen/config"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/db"
)

var ErrAuthRequired = errors.New("authentication required: send AUTH JWT <token>")

// ConnectionState tracks per-connection authentication state.
type ConnectionState struct {
	identity      *core.Identity
	authenticated bool
	tokenExpiry   time.Time
}

func (cs *ConnectionState) IsAuthenticated() bool {
	return cs.authenticated
}

// Identity returns the connection's identity, or nil if not authenticated.
func (cs *ConnectionState) Identity() *core.Identity {
	return cs.identity
}

// expired reports whether the token that authenticated the connection has
// run out. Tokens without exp never expire.
func (cs *ConnectionState) expired(now time.Time) bool {
	return !cs.tokenExpiry.IsZero() && now.After(cs.tokenExpiry)
}

type authResult struct {
	identity  core.Identity
	expiresAt time.Time
	err       error
}

// validateJWT validates a token against the server's auth settings and
// extracts the identity claims.
func validateJWT(auth *config.AuthConfig, tokenString string) authResult {
	if auth == nil || !auth.Enabled {
		return authResult{err: errors.New("authentication not configured")}
	}

	nameClaim := auth.NameClaim
	if nameClaim == "" {
		nameClaim = "name"
	}
	emailClaim := auth.EmailClaim
	if emailClaim == "" {
		emailClaim = "email"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(auth.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return authResult{err: fmt.Errorf("invalid token: %w", err)}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return authResult{err: errors.New("invalid token claims")}
	}

	if auth.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != auth.Issuer {
			return authResult{err: fmt.Errorf("invalid issuer: expected %s, got %s", auth.Issuer, issuer)}
		}
	}

	if auth.Audience != "" {
		audiences, _ := claims.GetAudience()
		if !slices.Contains(audiences, auth.Audience) {
			return authResult{err: fmt.Errorf("invalid audience: expected %s", auth.Audience)}
		}
	}

	name, _ := claims[nameClaim].(string)
	email, _ := claims[emailClaim].(string)
	if name == "" && email == "" {
		return authResult{err: fmt.Errorf("token missing identity claims (%s or %s)", nameClaim, emailClaim)}
	}
	if name == "" {
		name = email
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return authResult{
		identity:  core.Identity{Name: name, Email: email},
		expiresAt: expiresAt,
	}
}

// isAuthCommand reports whether line starts with the AUTH keyword.
func isAuthCommand(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[0], "AUTH")
}

// parseAuthCommand parses an AUTH command and returns the auth type and token.
// Supported formats:
//   - AUTH JWT <token>
func parseAuthCommand(line string) (authType, token string, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 || !strings.EqualFold(parts[0], "AUTH") {
		return "", "", errors.New("not an AUTH command")
	}
	if len(parts) != 3 {
		return "", "", errors.New("invalid AUTH command: expected AUTH <type> <credentials>")
	}

	authType = strings.ToUpper(parts[1])
	if authType != "JWT" {
		return "", "", fmt.Errorf("unsupported auth type: %s", authType)
	}
	return authType, parts[2], nil
}

// handleAuth processes an AUTH command, updating state on success.
func (s *Server) handleAuth(line string, state *ConnectionState) db.Response {
	_, token, err := parseAuthCommand(line)
	if err != nil {
		return db.Response{Type: "auth", Error: err.Error()}
	}

	result := validateJWT(s.authConfig, token)
	if result.err != nil {
		return db.Response{Type: "auth", Error: result.err.Error()}
	}

	state.identity = &result.identity
	state.authenticated = true
	state.tokenExpiry = result.expiresAt

	ar := AuthResponse{
		Authenticated: true,
		Identity:      result.identity.String(),
	}
	if !result.expiresAt.IsZero() {
		ar.ExpiresIn = int(time.Until(result.expiresAt).Seconds())
	}

	data, _ := json.Marshal(ar)
	return db.Response{Success: true, Type: "auth", Result: data}
}
