package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/craftkart/order-service/internal/entities"
)

// Signer computes and verifies base64-encoded HMAC-SHA256 signatures
// over raw request bodies, keyed by the secret shared with the
// shipping provider. Verification must run against the unparsed body:
// re-serializing JSON can reorder keys and change whitespace, which
// breaks the digest.
type Signer struct {
	secret []byte
}

func New(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the expected digest
// in constant time. A missing or blank signature fails outright.
func (s *Signer) Verify(body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("missing signature header: %w", entities.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	supplied, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed signature encoding: %w", entities.ErrInvalidSignature)
	}

	if !hmac.Equal(expected, supplied) {
		return entities.ErrInvalidSignature
	}
	return nil
}
