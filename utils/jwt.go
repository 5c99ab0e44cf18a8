package utils

import (
	"fmt"
	"os"
	"time"

	"richman-tours/models/account"

	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "richman-tours-dev-secret"
	}
	return []byte(secret)
}

func tokenTTL() time.Duration {
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		if d, err := time.ParseDuration(v + "h"); err == nil {
			return d
		}
	}
	return 24 * time.Hour
}

// IssueToken signs an HS256 token carrying the user's identity and roles.
func IssueToken(user *account.User) (string, error) {
	roles := []string{}
	if user.IsStaff {
		roles = append(roles, "staff")
	}
	if user.IsAdmin {
		roles = append(roles, "admin")
	}
	if user.IsSuperuser {
		roles = append(roles, "superuser")
	}

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"roles":    roles,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
