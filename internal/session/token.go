package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier turns a session provider access token into a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// HMACVerifier validates HS256-family tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier constructs a verifier. An empty secret rejects every token.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(strings.TrimSpace(secret))}
}

// Verify checks signature and expiry and returns the subject claim.
func (v *HMACVerifier) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if len(v.secret) == 0 || tokenString == "" {
		return "", ErrInvalidToken
	}

	const bearer = "bearer "
	if strings.HasPrefix(strings.ToLower(tokenString), bearer) {
		tokenString = strings.TrimSpace(tokenString[len(bearer):])
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID := extractSubject(claims)
	if userID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return userID, nil
}

func extractSubject(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			if v >= 0 {
				return fmt.Sprintf("%.0f", v)
			}
		}
	}
	return ""
}
