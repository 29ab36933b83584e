package derive

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestDigest_Shape(t *testing.T) {
	d := Digest("s1", "d1", 1)
	assert.Len(t, d, DigestLen)
	assert.Regexp(t, hexDigest, d)
}

func TestDigest_Deterministic(t *testing.T) {
	first := Digest("s1", "d1", 1)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Digest("s1", "d1", 1))
	}
}

func TestDigest_Sensitivity(t *testing.T) {
	base := Digest("s1", "d1", 1)
	assert.NotEqual(t, base, Digest("s1", "d1", 2), "input must change the digest")
	assert.NotEqual(t, base, Digest("s2", "d1", 1), "secret must change the digest")
	assert.NotEqual(t, base, Digest("s1", "d2", 1), "domain must change the digest")
}

func TestDigest_KnownVector(t *testing.T) {
	// Pinned so an accidental change to the key layout or input encoding
	// shows up as a test failure rather than a silent value re-roll.
	// HMAC-SHA256(key="s1d1", msg="1").
	assert.Equal(t,
		"d01bbe16ab7526306c958f195d0647e2a16ca3b866db68abfb1e23fd554fa539",
		Digest("s1", "d1", 1))
}

func TestUint64AndFloat64(t *testing.T) {
	u := Uint64("s1", "d1", 7)
	assert.Equal(t, u, Uint64("s1", "d1", 7))
	assert.NotEqual(t, u, Uint64("s1", "d1", 8))

	f := Float64("s1", "d1", 7)
	assert.Equal(t, f, Float64("s1", "d1", 7))
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}

func TestDigestProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		secret := rapid.String().Draw(t, "secret")
		domain := rapid.String().Draw(t, "domain")
		input := rapid.Float64().Draw(t, "input")

		d := Digest(secret, domain, input)
		if len(d) != DigestLen {
			t.Fatalf("digest length %d, want %d", len(d), DigestLen)
		}
		if d != Digest(secret, domain, input) {
			t.Fatalf("digest is not deterministic for (%q, %q, %v)", secret, domain, input)
		}

		f := Float64(secret, domain, input)
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 = %v outside [0, 1)", f)
		}
	})
}

func TestNewSessionSecret(t *testing.T) {
	a, err := NewSessionSecret()
	require.NoError(t, err)
	b, err := NewSessionSecret()
	require.NoError(t, err)

	assert.Len(t, a, secretLen*2)
	assert.NotEqual(t, a, b, "secrets must be unique per session")
}
