package utils

import (
	"fmt"
	"os"
	"time"
	"timetokens/src/types"

	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return types.Env(os.Getenv("API_ENV")) == types.Production
}

// GenerateJWT mints a bearer token for the given user. The subject is
// the numeric user id, which the auth middleware resolves back to a row.
func GenerateJWT(userId uint, email string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &types.Claims{
		Username: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userId),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}
