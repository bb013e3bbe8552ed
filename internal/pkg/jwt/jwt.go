package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is stamped into every minted credential.
	Issuer = "stafflink-core"

	// DefaultTTL is the fixed bearer credential lifetime. Bearer credentials
	// self-expire; there is no revocation list, and invalidating a cookie
	// session does not invalidate bearer credentials minted alongside it.
	DefaultTTL = time.Hour

	defaultSecret = "stafflink-secret-change-me"
)

var secret = []byte(defaultSecret)

// SetSecret configures the signing secret (call on startup). The secret is
// independent of the session store; the two credential mechanisms share no
// state.
func SetSecret(s string) {
	if s != "" {
		secret = []byte(s)
	}
}

// Identity is the subset of claims describing who the credential belongs to.
type Identity struct {
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	RoleID    uint   `json:"role_id"`
	DatasetID string `json:"dataset_id,omitempty"`
}

// Claims is the bearer credential payload.
type Claims struct {
	Identity
	jwtlib.RegisteredClaims
}

// Sign mints a credential for the given identity with the fixed TTL.
func Sign(id Identity) (string, error) {
	return SignWithTTL(id, DefaultTTL)
}

// SignWithTTL mints a credential with an explicit lifetime.
func SignWithTTL(id Identity, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := Claims{
		Identity: id,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse validates signature, not-before and expiry, and returns the claims.
// Every structural or cryptographic failure surfaces as a plain error.
func Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// UserFrom returns just the identity subset, or an error if the token does
// not validate.
func UserFrom(tokenStr string) (*Identity, error) {
	claims, err := Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	return &claims.Identity, nil
}
