package security

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// Content-Signature header format: "alg=<algorithm>; digest=<url-safe base64>".
var signaturePattern = regexp.MustCompile(`alg=(\S+);\sdigest=`)

var (
	ErrNoSignature        = errors.New("signature is missing")
	ErrMalformedSignature = errors.New("malformed signature header")
)

type SignatureHeader struct {
	Alg    string
	Digest string
}

func ExtractSignature(header string) (SignatureHeader, error) {
	if header == "" {
		return SignatureHeader{}, ErrNoSignature
	}

	loc := signaturePattern.FindStringSubmatchIndex(header)
	if loc == nil {
		return SignatureHeader{}, ErrMalformedSignature
	}

	digest := header[loc[1]:]
	if digest == "" {
		return SignatureHeader{}, ErrMalformedSignature
	}

	return SignatureHeader{
		Alg:    header[loc[2]:loc[3]],
		Digest: digest,
	}, nil
}

var urlSafeReplacer = strings.NewReplacer("-", "+", "_", "/", ",", "=")

func DecodeDigest(digest string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(urlSafeReplacer.Replace(digest))
}

// Verifier checks notification signatures against the merchant's configured
// public key. Every malformed input collapses to "not verified": the caller
// must treat a false result exactly like a wrong signature.
type Verifier struct {
	key *rsa.PublicKey
}

func NewVerifier(key *rsa.PublicKey) *Verifier {
	return &Verifier{key: key}
}

// Verify reports whether signature is a valid SHA-256 RSA signature over the
// exact raw body bytes. It never returns an error.
func (v *Verifier) Verify(body, signature []byte) bool {
	if v == nil || v.key == nil || len(body) == 0 || len(signature) == 0 {
		return false
	}

	hashed := sha256.Sum256(body)

	return rsa.VerifyPKCS1v15(v.key, crypto.SHA256, hashed[:], signature) == nil
}
