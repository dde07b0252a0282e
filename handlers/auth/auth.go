package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
	"whiteboard/core"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// DefaultTokenTTL is the lifetime of tokens minted by CreateJWT.
const DefaultTokenTTL = time.Hour * 24 * 7 // 1 week

// ErrNoSecret is returned when JWT_SECRET is not configured.
var ErrNoSecret = errors.New("JWT secret is not configured")

var (
	mu        sync.RWMutex
	jwtSecret []byte
)

// AppClaims represents the custom claims for the JWT.
type AppClaims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
}

// InitAuth reads JWT_SECRET from the environment.
func InitAuth() {
	SetSecret([]byte(os.Getenv("JWT_SECRET")))
	if len(secret()) == 0 {
		logrus.Warn("JWT_SECRET is not set. Authentication will not work.")
	}
}

// SetSecret replaces the HMAC key used to sign and verify tokens.
func SetSecret(secret []byte) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = append([]byte(nil), secret...)
}

func secret() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret
}

// CreateJWT signs an HS256 token for user valid for ttl.
func CreateJWT(user *core.User, ttl time.Duration) (string, error) {
	key := secret()
	if len(key) == 0 {
		return "", ErrNoSecret
	}
	if user.Subject == "" {
		return "", fmt.Errorf("user subject is required")
	}

	now := time.Now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Login: user.Login,
		Email: user.Email,
		Name:  user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseJWT verifies tokenString and returns its claims.
func ParseJWT(tokenString string) (*AppClaims, error) {
	key := secret()
	if len(key) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// User returns the user carried by the claims.
func (c *AppClaims) User() *core.User {
	return &core.User{Subject: c.Subject, Login: c.Login, Email: c.Email, Name: c.Name}
}

// HandleMe returns the authenticated user. claimsFrom extracts the claims put in the
// request context by the auth middleware.
func HandleMe(claimsFrom func(r *http.Request) (*AppClaims, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}
		render.JSON(w, r, claims.User())
	}
}
