package auth

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Claims are the claims carried by an access token,
// the subject is the account ID and the token ID is the session ID
type Claims struct {
	jwt.StandardClaims
}

// NewAccessToken signs an access token for a given session
func NewAccessToken(secret []byte, s Session) (signedToken string, err error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	if err = s.Validate(); err != nil {
		return "", errors.Wrap(err, "invalid session")
	}

	atok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   s.AccountID.String(),
			IssuedAt:  s.CreatedAt.Unix(),
			ExpiresAt: s.ExpireAt.Unix(),
			Id:        s.ID,
		},
	})

	signedToken, err = atok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to obtain a signed token string: %s", err)
	}

	return signedToken, nil
}

// ParseAccessToken verifies the signature and expiration of an access token
func ParseAccessToken(secret []byte, signedToken string) (claims Claims, err error) {
	token, err := jwt.ParseWithClaims(signedToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return secret, nil
	})

	if err != nil || !token.Valid {
		return claims, ErrInvalidAccessToken
	}

	if claims.Id == "" {
		return claims, ErrInvalidSessionID
	}

	return claims, nil
}
