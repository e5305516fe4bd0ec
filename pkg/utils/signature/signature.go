package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Prefix is the algorithm marker GitHub puts in front of X-Hub-Signature-256 values
const Prefix = "sha256="

// Sign returns the X-Hub-Signature-256 value for body
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided matches the HMAC-SHA256 digest of body.
//
// body must be the request body exactly as received. An empty secret or an
// empty header never verifies. The comparison is constant-time.
func Verify(body []byte, secret, provided string) bool {
	if secret == "" || provided == "" {
		return false
	}

	expected := Sign(body, secret)
	return hmac.Equal([]byte(provided), []byte(expected))
}
