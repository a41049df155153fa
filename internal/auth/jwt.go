package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of tokens minted by GenerateToken.
const TokenTTL = 30 * 24 * time.Hour

var errMissingClaim = errors.New("token is missing account or user claim")

func GenerateToken(secret []byte, c Credential) (string, error) {
	claims := jwt.MapClaims{
		"id_account": c.IDAccount,
		"id_user":    c.IDUser,
		"exp":        time.Now().Add(TokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ParseToken(secret []byte, tokenString string) (Credential, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Credential{}, err
	}
	if !token.Valid {
		return Credential{}, errors.New("invalid token")
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Credential{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	account, okA := data["id_account"].(float64)
	user, okU := data["id_user"].(float64)
	if !okA || !okU || account <= 0 || user <= 0 {
		return Credential{}, errMissingClaim
	}
	return Credential{IDAccount: int64(account), IDUser: int64(user)}, nil
}
