package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// KeyType identifies the API key algorithm.
type KeyType string

const (
	// KeyTypeEC is a PEM encoded P-256 private key, signed with ES256.
	KeyTypeEC KeyType = "ec"
	// KeyTypeEd25519 is a base64 encoded 64 byte ed25519 key, signed with EdDSA.
	KeyTypeEd25519 KeyType = "ed25519"
)

// apiKey is a parsed API key secret ready to sign bearer tokens.
type apiKey struct {
	keyType KeyType
	signer  crypto.Signer
	method  jwt.SigningMethod
}

// normalizePEM undoes the escaping of newlines that happens when a PEM key
// is stored in an env var or a single line JSON document.
func normalizePEM(secret string) string {
	return strings.ReplaceAll(strings.TrimSpace(secret), `\n`, "\n")
}

// DetectKeyType reports which kind of API key secret is given. It returns
// false when the secret is neither a PEM EC key nor a base64 ed25519 key.
func DetectKeyType(secret string) (KeyType, bool) {
	if _, err := parseECKey(secret); err == nil {
		return KeyTypeEC, true
	}
	if _, err := parseEd25519Key(secret); err == nil {
		return KeyTypeEd25519, true
	}
	return "", false
}

func parseAPIKey(secret string) (*apiKey, error) {
	if strings.Contains(secret, "-----BEGIN") {
		key, err := parseECKey(secret)
		if err != nil {
			return nil, err
		}
		return &apiKey{keyType: KeyTypeEC, signer: key, method: jwt.SigningMethodES256}, nil
	}

	key, err := parseEd25519Key(secret)
	if err != nil {
		return nil, cdperrors.KeyParseError("invalid key format - must be either PEM EC key or base64 Ed25519 key", nil)
	}
	return &apiKey{keyType: KeyTypeEd25519, signer: key, method: jwt.SigningMethodEdDSA}, nil
}

func parseECKey(secret string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(normalizePEM(secret)))
	if block == nil {
		return nil, cdperrors.KeyParseError("failed to parse PEM block", nil)
	}

	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if pkcs8Err != nil {
			return nil, cdperrors.KeyParseError("failed to parse EC private key", err)
		}
		var ok bool
		if key, ok = parsed.(*ecdsa.PrivateKey); !ok {
			return nil, cdperrors.KeyParseError("PEM key is not an EC private key", nil)
		}
	}
	if key.Curve != elliptic.P256() {
		return nil, cdperrors.KeyParseError("EC key must use the P-256 curve", nil)
	}
	return key, nil
}

func parseEd25519Key(secret string) (ed25519.PrivateKey, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secret))
	if err != nil {
		return nil, cdperrors.KeyParseError("failed to decode Ed25519 key", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, cdperrors.KeyParseError("invalid Ed25519 key length", nil)
	}

	key := ed25519.PrivateKey(decoded)
	derived := ed25519.NewKeyFromSeed(decoded[:ed25519.SeedSize])
	if !key.Public().(ed25519.PublicKey).Equal(derived.Public()) {
		return nil, cdperrors.KeyParseError("Ed25519 public key does not match seed", nil)
	}
	return key, nil
}

// ParseWalletSecret decodes a base64 PKCS8 DER wallet secret.
func ParseWalletSecret(secret string) (*ecdsa.PrivateKey, error) {
	if secret == "" {
		return nil, cdperrors.WalletSecretError("wallet secret is not defined", nil)
	}

	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secret))
	if err != nil {
		return nil, cdperrors.WalletSecretError("failed to decode wallet secret", err)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, cdperrors.WalletSecretError("could not create the EC key", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, cdperrors.WalletSecretError("wallet secret is not an ECDSA key", nil)
	}
	return key, nil
}

// PublicKeyFromSecret returns the public half of an API key secret. The result
// is an *ecdsa.PublicKey or an ed25519.PublicKey.
func PublicKeyFromSecret(secret string) (crypto.PublicKey, error) {
	key, err := parseAPIKey(secret)
	if err != nil {
		return nil, err
	}
	return key.signer.Public(), nil
}

// WalletPublicKey returns the public key matching a wallet secret.
func WalletPublicKey(secret string) (*ecdsa.PublicKey, error) {
	key, err := ParseWalletSecret(secret)
	if err != nil {
		return nil, err
	}
	return &key.PublicKey, nil
}
