package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultMaxWalletTokenAge = time.Minute

// Verifier validates CDP bearer and wallet tokens against registered keys.
type Verifier struct {
	keys   map[string]crypto.PublicKey
	keysMu sync.RWMutex

	leeway       time.Duration
	maxWalletAge time.Duration
}

// NewVerifier creates a verifier with no registered keys.
func NewVerifier(leeway time.Duration) *Verifier {
	return &Verifier{
		keys:         make(map[string]crypto.PublicKey),
		leeway:       leeway,
		maxWalletAge: defaultMaxWalletTokenAge,
	}
}

// AddKey registers the public key for an API key ID.
func (v *Verifier) AddKey(kid string, pub crypto.PublicKey) error {
	switch pub.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey:
	default:
		return fmt.Errorf("unsupported public key type %T", pub)
	}
	v.keysMu.Lock()
	v.keys[kid] = pub
	v.keysMu.Unlock()
	return nil
}

// AddSecret registers the public half of an API key secret.
func (v *Verifier) AddSecret(kid, secret string) error {
	pub, err := PublicKeyFromSecret(secret)
	if err != nil {
		return err
	}
	return v.AddKey(kid, pub)
}

func (v *Verifier) getKey(kid string) (crypto.PublicKey, error) {
	v.keysMu.RLock()
	key, exists := v.keys[kid]
	v.keysMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	return key, nil
}

// Verify validates a bearer token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing kid in token header")
		}
		if _, ok := token.Header["nonce"].(string); !ok {
			return nil, fmt.Errorf("missing nonce in token header")
		}

		key, err := v.getKey(kid)
		if err != nil {
			return nil, err
		}
		switch token.Method.(type) {
		case *jwt.SigningMethodECDSA:
			if _, ok := key.(*ecdsa.PublicKey); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
		case *jwt.SigningMethodEd25519:
			if _, ok := key.(ed25519.PublicKey); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg(), jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if kid, _ := token.Header["kid"].(string); kid != claims.Subject {
		return nil, fmt.Errorf("kid %q does not match sub %q", kid, claims.Subject)
	}
	return claims, nil
}

// VerifyRequest validates a bearer token and checks that it was minted for
// the given request line.
func (v *Verifier) VerifyRequest(tokenString, method, host, path string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if err := RequireURI(claims.URIs, RequestURI(method, host, path)); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyWalletJWT validates a wallet token against the wallet public key, the
// request line and the request body.
func (v *Verifier) VerifyWalletJWT(tokenString string, pub *ecdsa.PublicKey, method, host, path string, body map[string]any) (*WalletClaims, error) {
	claims := &WalletClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet token: %w", err)
	}

	if claims.IssuedAt == nil {
		return nil, errors.New("wallet token missing iat")
	}
	if time.Since(claims.IssuedAt.Time) > v.maxWalletAge+v.leeway {
		return nil, errors.New("wallet token is too old")
	}
	if err := RequireURI(claims.URIs, RequestURI(method, host, path)); err != nil {
		return nil, err
	}

	want := ""
	if len(body) > 0 {
		if want, err = HashBody(body); err != nil {
			return nil, err
		}
	}
	if claims.ReqHash != want {
		return nil, errors.New("wallet token reqHash does not match request body")
	}
	return claims, nil
}

// RequireURI fails unless uris contains want, a "METHOD host+path" string.
func RequireURI(uris []string, want string) error {
	if !slices.Contains(uris, want) {
		return fmt.Errorf("token not valid for %q", want)
	}
	return nil
}
