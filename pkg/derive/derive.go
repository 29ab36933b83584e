// Package derive produces the stable keyed digests that anchor substitute
// values to a single site and browsing session. The session secret is the
// root key material; mixing in the domain key makes every derived value
// site-specific, so two sites can never observe the same substitute and a
// fresh secret re-rolls everything at the next session.
package derive

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// DigestLen is the length of the hex digest returned by Digest.
const DigestLen = sha256.Size * 2

// Digest derives a deterministic lowercase hex digest for input, keyed by the
// session secret and domain key (secret first). Identical inputs always yield
// the identical 64-character digest, across calls and process restarts.
func Digest(sessionSecret, domainKey string, input float64) string {
	mac := hmac.New(sha256.New, []byte(sessionSecret+domainKey))
	mac.Write([]byte(formatInput(input)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Uint64 derives a deterministic 64-bit value from the same key material,
// taken from the leading bytes of the digest.
func Uint64(sessionSecret, domainKey string, input float64) uint64 {
	mac := hmac.New(sha256.New, []byte(sessionSecret+domainKey))
	mac.Write([]byte(formatInput(input)))
	return binary.BigEndian.Uint64(mac.Sum(nil)[:8])
}

// Float64 derives a deterministic value in [0, 1) from the same key material.
func Float64(sessionSecret, domainKey string, input float64) float64 {
	// 53 bits of digest output map uniformly onto the double mantissa.
	return float64(Uint64(sessionSecret, domainKey, input)>>11) / (1 << 53)
}

// formatInput renders the numeric input in its canonical decimal text form.
// The textual encoding is part of the digest contract: changing it would
// silently re-roll every derived value.
func formatInput(input float64) string {
	if input == math.Trunc(input) && math.Abs(input) < 1e15 {
		return strconv.FormatInt(int64(input), 10)
	}
	return strconv.FormatFloat(input, 'g', -1, 64)
}

// secretLen is the byte length of a freshly minted session secret.
const secretLen = 32

// NewSessionSecret mints a fresh hex-encoded session secret. Generated once
// per browsing session by the embedding host and owned by the caller; this
// package never retains it.
func NewSessionSecret() (string, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("derive: generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
