// Package auth produces the credentials CDP expects on every request: a
// bearer JWT signed with the API key, and for wallet operations a second
// JWT signed with the wallet secret that binds the request body.
package auth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	// Issuer is the iss claim of every CDP bearer token.
	Issuer = "cdp"
	// DefaultExpiresIn is the bearer token lifetime in seconds.
	DefaultExpiresIn int64 = 120

	nonceSize = 16
)

// JWTOptions describes a bearer token. RequestMethod, RequestHost and
// RequestPath must be all set for REST calls or all empty for websocket
// connections.
type JWTOptions struct {
	KeyID         string
	KeySecret     string
	RequestMethod string
	RequestHost   string
	RequestPath   string
	// ExpiresIn is the lifetime in seconds, DefaultExpiresIn when zero.
	ExpiresIn int64
	Audience  []string
}

// WalletJWTOptions describes a wallet authentication token.
type WalletJWTOptions struct {
	WalletSecret  string
	RequestMethod string
	RequestHost   string
	RequestPath   string
	RequestData   map[string]any
}

// Claims are the claims of a CDP bearer token.
type Claims struct {
	URIs []string `json:"uris,omitempty"`
	jwt.RegisteredClaims
}

// WalletClaims are the claims of a wallet authentication token.
type WalletClaims struct {
	URIs    []string `json:"uris"`
	ReqHash string   `json:"reqHash,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrMissingKeyID      = errors.New("key name is required")
	ErrMissingKeySecret  = errors.New("private key is required")
	ErrPartialRequestURI = errors.New("either all request details (method, host, path) must be provided, or all must be empty for JWTs intended for websocket connections")
)

// RequestURI formats the uris claim entry for a request.
func RequestURI(method, host, path string) string {
	return fmt.Sprintf("%s %s%s", method, host, path)
}

// GenerateJWT generates a bearer token for authenticating with the CDP API.
func GenerateJWT(opts JWTOptions) (string, error) {
	if opts.KeyID == "" {
		return "", cdperrors.JWTGenerationError(ErrMissingKeyID.Error(), ErrMissingKeyID)
	}
	if opts.KeySecret == "" {
		return "", cdperrors.JWTGenerationError(ErrMissingKeySecret.Error(), ErrMissingKeySecret)
	}
	key, err := parseAPIKey(opts.KeySecret)
	if err != nil {
		return "", err
	}
	return signBearer(key, opts, time.Now())
}

func signBearer(key *apiKey, opts JWTOptions, now time.Time) (string, error) {
	hasAll := opts.RequestMethod != "" && opts.RequestHost != "" && opts.RequestPath != ""
	hasNone := opts.RequestMethod == "" && opts.RequestHost == "" && opts.RequestPath == ""
	if !hasAll && !hasNone {
		return "", cdperrors.JWTGenerationError(ErrPartialRequestURI.Error(), ErrPartialRequestURI)
	}

	expiresIn := opts.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}

	nonce, err := randomHex(nonceSize)
	if err != nil {
		return "", cdperrors.JWTGenerationError("failed to generate nonce", err)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.KeyID,
			Issuer:    Issuer,
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresIn) * time.Second)),
		},
	}
	if len(opts.Audience) > 0 {
		claims.Audience = jwt.ClaimStrings(opts.Audience)
	}
	if hasAll {
		claims.URIs = []string{RequestURI(opts.RequestMethod, opts.RequestHost, opts.RequestPath)}
	}

	token := jwt.NewWithClaims(key.method, claims)
	token.Header["kid"] = opts.KeyID
	token.Header["nonce"] = nonce

	signed, err := token.SignedString(key.signer)
	if err != nil {
		return "", cdperrors.JWTGenerationError("failed to sign token", err)
	}
	return signed, nil
}

// GenerateWalletJWT generates the X-Wallet-Auth token for a request.
func GenerateWalletJWT(opts WalletJWTOptions) (string, error) {
	key, err := ParseWalletSecret(opts.WalletSecret)
	if err != nil {
		return "", err
	}
	return signWallet(key, opts, time.Now())
}

func signWallet(key *ecdsa.PrivateKey, opts WalletJWTOptions, now time.Time) (string, error) {
	jti, err := randomHex(nonceSize)
	if err != nil {
		return "", cdperrors.JWTGenerationError("failed to generate nonce", err)
	}

	claims := WalletClaims{
		URIs: []string{RequestURI(opts.RequestMethod, opts.RequestHost, opts.RequestPath)},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	if len(opts.RequestData) > 0 {
		hash, err := HashBody(opts.RequestData)
		if err != nil {
			return "", cdperrors.JWTGenerationError("failed to hash request data", err)
		}
		claims.ReqHash = hash
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", cdperrors.WalletSecretError("could not sign token", err)
	}
	return signed, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
