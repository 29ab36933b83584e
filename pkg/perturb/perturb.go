// Package perturb implements the deterministic noise primitives used to
// derive per-bit substitution decisions from key material. The stepper is a
// lightweight linear-feedback recurrence over a 63-bit state; it is
// reproducible by construction and is not a cryptographic generator. Callers
// that need keyed, collision-resistant output compose it with pkg/derive.
package perturb

const (
	// stateMask confines the recurrence to the 63-bit state space so the
	// result can never be read as a negative value by a signed consumer.
	stateMask = 1<<63 - 1

	// feedbackBit is where the tap output is injected after the shift.
	feedbackBit = uint64(1) << 62
)

// Step advances the perturbation state by one transition. The next state is
// the current state shifted right once, with the XOR of the two lowest bits
// fed back into bit 62. Defined for every 63-bit input; inputs with the top
// bit set are folded into the state space first.
func Step(v uint64) uint64 {
	v &= stateMask
	return (v >> 1) | (((v << 62) ^ (v << 61)) & feedbackBit)
}

// TransformFunc receives the current walk state and the remaining bits of the
// character being walked. Returning true halts the walk immediately, across
// both loops. The transform observes the state but never steers it: the item
// sequence is a function of the key alone, so two transforms walking the same
// key see the identical Step chain.
type TransformFunc func(item, bitByte uint64) (stop bool)

// bitSteps is the number of transform invocations per character. The walk
// deliberately runs one step past a full byte; derived noise values depend on
// this exact count.
const bitSteps = 9

// WalkKey drives the stepper across every character of key, invoking fn once
// per bit position. The state seeds from the first character's code point and
// persists across the whole key; after each non-stopping invocation the state
// is advanced with Step and the character value is shifted right one bit, so
// fn observes each bit of the character in its lowest position. The final
// state is returned. An empty key or nil transform returns zero without
// invoking anything.
func WalkKey(key string, fn TransformFunc) uint64 {
	runes := []rune(key)
	if len(runes) == 0 || fn == nil {
		return 0
	}

	item := uint64(runes[0]) & stateMask
	for _, r := range runes {
		bitByte := uint64(r)
		for pos := 0; pos < bitSteps; pos++ {
			if fn(item, bitByte) {
				return item
			}
			item = Step(item)
			bitByte >>= 1
		}
	}
	return item
}
