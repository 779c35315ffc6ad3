package authority

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"jobmate/board-client/internal/model"
)

// Principal is the caller identified by a verified token.
type Principal struct {
	UserID string
	Role   model.Role
}

// IssueToken signs an HS256 session token for userID.
func IssueToken(secret []byte, userID string, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := gojwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(secret)
}

// verifyToken checks the signature and expiry of raw.
func verifyToken(secret []byte, raw string) (Principal, error) {
	token, err := gojwt.Parse(raw, func(*gojwt.Token) (any, error) {
		return secret, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}), gojwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}
	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, errors.New("token has no subject")
	}
	role, _ := claims["role"].(string)
	switch model.Role(role) {
	case model.RoleStudent, model.RoleRecruiter, model.RoleAdmin:
	default:
		return Principal{}, fmt.Errorf("token has invalid role %q", role)
	}
	return Principal{UserID: sub, Role: model.Role(role)}, nil
}
