package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no token found")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the subset of the access token payload the console relies on.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// GenerateJWT signs an HS256 token. Tokens are normally issued by the
// backend; this is used by tests and local tooling.
func GenerateJWT(secret []byte, userID, email, role string, expiry time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(expiry).Unix(),
	})

	return token.SignedString(secret)
}

// DecodeJWT extracts claims from tokenString. With an empty secret the
// signature is not checked. exp is mandatory and compared against now.
func DecodeJWT(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	mapClaims := jwt.MapClaims{}

	if len(secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, mapClaims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		}, jwt.WithoutClaimsValidation())
		if err != nil || !token.Valid {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	if !now.Before(exp.Time) {
		return nil, ErrTokenExpired
	}

	userID, _ := mapClaims["sub"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the named cookie.
func ExtractToken(r *http.Request, cookieName string) (string, error) {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(authHeader[7:]); token != "" {
			return token, nil
		}
	}

	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", ErrNoToken
}
