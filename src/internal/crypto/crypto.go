package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"letterdesk-admin-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultTokenSize is the number of random bytes in a raw session token.
const DefaultTokenSize = 32

// Config holds the server-side signing secret, sourced once from
// configuration at construction. A missing secret disables signing and
// verification entirely; it never falls back to an insecure default.
type Config struct {
	Secret string
}

// TokenCrypto generates session tokens, hashes them for storage and
// signs them with a server-held HMAC secret.
type TokenCrypto struct {
	secret []byte
}

func New(cfg Config) *TokenCrypto {
	if cfg.Secret == "" {
		logrus.Warn("Session secret is not configured - admin sessions cannot be issued or validated")
		return &TokenCrypto{}
	}
	return &TokenCrypto{secret: []byte(cfg.Secret)}
}

// Configured reports whether a signing secret is present.
func (t *TokenCrypto) Configured() bool {
	return len(t.secret) > 0
}

// GenerateToken returns size cryptographically random bytes, hex-encoded.
// A CSPRNG failure is returned as an error, never papered over with a
// weaker source.
func (t *TokenCrypto) GenerateToken(size int) (string, error) {
	if size <= 0 {
		size = DefaultTokenSize
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		logrus.WithError(err).Error("Failed to read from crypto/rand")
		return "", models.ErrTokenGeneration
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the SHA-256 digest of the raw token, hex-encoded. The
// digest is the only form of the token ever persisted.
func (t *TokenCrypto) Hash(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Sign returns the hex HMAC-SHA256 of the raw token under the server secret.
func (t *TokenCrypto) Sign(rawToken string) (string, error) {
	if !t.Configured() {
		return "", models.ErrMissingSecret
	}
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(rawToken))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the MAC for rawToken and compares it to signature in
// constant time. It fails closed when no secret is configured.
func (t *TokenCrypto) Verify(rawToken, signature string) (bool, error) {
	if !t.Configured() {
		return false, models.ErrMissingSecret
	}
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(rawToken))
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false, nil
	}
	return hmac.Equal(expected, supplied), nil
}
