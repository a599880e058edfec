package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles carried in tokens
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
)

const TokenExpiry = 12 * time.Hour

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrMissingTenant   = errors.New("tenant is required")
	ErrUnknownRole     = errors.New("unknown role")
)

// Words for generated admin passwords
var drawWords = []string{
	"ticket", "raffle", "lucky", "prize", "drum",
	"clover", "jackpot", "bingo", "gala", "confetti",
	"ribbon", "trophy", "token", "stub", "golden",
	"wheel", "charm", "draw", "winner",
}

// Claims identifies the caller of an organizer or admin endpoint
type Claims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Auth checks the admin password and issues and verifies role tokens
type Auth struct {
	passwordHash []byte
	secret       []byte
	expiry       time.Duration
	now          func() time.Time
}

// New creates an Auth that accepts password at login and signs tokens with secret
func New(password string, secret []byte) (*Auth, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Auth{
		passwordHash: hash,
		secret:       secret,
		expiry:       TokenExpiry,
		now:          time.Now,
	}, nil
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = drawWords[randomInt(len(drawWords))]
	}
	return strings.Join(words, "-")
}

// GenerateSecret returns n random bytes hex encoded
func GenerateSecret(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Login validates the admin password and returns an admin token for tenantID
func (a *Auth) Login(password, tenantID string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return a.IssueToken(RoleAdmin, tenantID, "admin")
}

// IssueToken signs a token granting role within tenantID
func (a *Auth) IssueToken(role, tenantID, subject string) (string, error) {
	if role != RoleAdmin && role != RoleOrganizer {
		return "", ErrUnknownRole
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	now := a.now()
	claims := Claims{
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies a signed token and returns its claims
func (a *Auth) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TenantID == "" || (claims.Role != RoleAdmin && claims.Role != RoleOrganizer) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type contextKey struct{}

// WithClaims returns ctx carrying claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireAuth
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

// bearerToken extracts the token from an Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth middleware for API endpoints (returns 401)
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeDenied(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - missing bearer token")
			return
		}
		claims, err := a.ParseToken(token)
		if err != nil {
			writeDenied(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// HasRole reports whether the token carries one of roles
func (c *Claims) HasRole(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

type deniedResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeDenied(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(deniedResponse{Code: code, Error: msg})
}

// randomInt returns a uniform random int in [0, max)
func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
