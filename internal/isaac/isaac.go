// Package isaac implements the 64-bit ISAAC stream cipher used as the
// deterministic random source for parity runs.
//
// The algorithm is Bob Jenkins' ISAAC-64 in the seeded variant shipped
// with NetHack 3.6 (Timothy B. Terriberry's isaac64.c). Both engines
// under comparison must produce bit-identical word sequences from the
// same seed, so every shift amount, index derivation, and mixing pass
// below is part of the contract and must not be "improved".
package isaac

import "encoding/binary"

const (
	szLog = 8
	sz    = 1 << szLog

	// MaxSeedBytes is the largest seed the key mixer absorbs; longer
	// seeds are silently truncated.
	MaxSeedBytes = sz * 8

	// goldenRatio seeds the mix state before any key material is folded in.
	goldenRatio = 0x9E3779B97F4A7C13
)

// Cipher is one ISAAC-64 generator context. The zero value is not
// usable; construct with New or call Seed before drawing.
//
// A Cipher is not safe for concurrent use. Callers that share one
// across goroutines must serialize access externally.
type Cipher struct {
	results [sz]uint64
	memory  [sz]uint64

	acc  uint64 // accumulator, "a" in the reference code
	prev uint64 // previous result, "b"
	ctr  uint64 // cycle counter, "c"

	remaining int

	// regens counts regeneration cycles since the last seeding,
	// including the one triggered by seeding itself.
	regens uint64
}

// New returns a cipher seeded from the given 64-bit value.
func New(seed uint64) *Cipher {
	c := &Cipher{}
	c.Seed(seed)
	return c
}

// Seed reinitializes the cipher from a 64-bit value, discarding any
// undrawn words. The same value always restarts the same sequence.
func (c *Cipher) Seed(seed uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], seed)
	c.SeedBytes(b[:])
}

// SeedBytes reinitializes the cipher from an arbitrary byte key.
// At most MaxSeedBytes are used.
func (c *Cipher) SeedBytes(key []byte) {
	c.acc = 0
	c.prev = 0
	c.ctr = 0
	c.results = [sz]uint64{}
	c.regens = 0
	c.reseed(key)
}

// reseed folds the key into the result array and runs the two-sweep
// avalanche over memory. A single sweep leaves early outputs visibly
// correlated with the key's low-order bytes, so both sweeps are required.
func (c *Cipher) reseed(key []byte) {
	n := len(key)
	if n > MaxSeedBytes {
		n = MaxSeedBytes
	}

	full := n / 8
	for i := 0; i < full; i++ {
		c.results[i] ^= binary.LittleEndian.Uint64(key[i*8:])
	}
	if rem := n - full*8; rem > 0 {
		var v uint64
		for j := 0; j < rem; j++ {
			v |= uint64(key[full*8+j]) << (8 * j)
		}
		c.results[full] ^= v
	}

	var x [8]uint64
	for i := range x {
		x[i] = goldenRatio
	}
	for i := 0; i < 4; i++ {
		mix(&x)
	}

	// First sweep absorbs the key-folded results, second sweep absorbs
	// the partially mixed memory itself.
	for i := 0; i < sz; i += 8 {
		for j := 0; j < 8; j++ {
			x[j] += c.results[i+j]
		}
		mix(&x)
		copy(c.memory[i:i+8], x[:])
	}
	for i := 0; i < sz; i += 8 {
		for j := 0; j < 8; j++ {
			x[j] += c.memory[i+j]
		}
		mix(&x)
		copy(c.memory[i:i+8], x[:])
	}

	c.update()
}

// mixShifts are the per-position shift amounts of the 8-word shuffle.
var mixShifts = [8]uint{9, 9, 23, 15, 14, 20, 17, 14}

func mix(x *[8]uint64) {
	for i := 0; i < 8; i += 2 {
		x[i] -= x[(i+4)&7]
		x[(i+5)&7] ^= x[(i+7)&7] >> mixShifts[i]
		x[(i+7)&7] += x[i]

		j := i + 1
		x[j] -= x[(j+4)&7]
		x[(j+5)&7] ^= x[(j+7)&7] << mixShifts[j]
		x[(j+7)&7] += x[j]
	}
}

// lowerBits selects bits 3..10 of x as a state index.
func lowerBits(x uint64) int {
	return int((x & ((sz - 1) << 3)) >> 3)
}

// upperBits selects bits 11..18 of y as a state index.
func upperBits(y uint64) int {
	return int((y >> (szLog + 3)) & (sz - 1))
}

// step advances the accumulator with the transform selected by k,
// then performs the indexed fetch/store pair for slot i. other is the
// opposite-half word for this slot.
func (c *Cipher) step(i, k int, a, b uint64, other uint64) (uint64, uint64) {
	x := c.memory[i]
	switch k {
	case 0:
		a = ^(a ^ (a << 21))
	case 1:
		a ^= a >> 5
	case 2:
		a ^= a << 12
	default:
		a ^= a >> 33
	}
	a += other
	y := c.memory[lowerBits(x)] + a + b
	c.memory[i] = y
	b = c.memory[upperBits(y)] + x
	c.results[i] = b
	return a, b
}

// update runs one regeneration cycle: all 256 result words are refilled
// as a pure function of the pre-cycle state.
func (c *Cipher) update() {
	a := c.acc
	c.ctr++
	b := c.prev + c.ctr

	for i := 0; i < sz/2; i += 4 {
		for k := 0; k < 4; k++ {
			a, b = c.step(i+k, k, a, b, c.memory[i+k+sz/2])
		}
	}
	for i := sz / 2; i < sz; i += 4 {
		for k := 0; k < 4; k++ {
			a, b = c.step(i+k, k, a, b, c.memory[i+k-sz/2])
		}
	}

	c.acc = a
	c.prev = b
	c.remaining = sz
	c.regens++
}

// NextUint64 returns the next 64-bit word of the stream. It never fails;
// an exhausted batch triggers one regeneration cycle.
func (c *Cipher) NextUint64() uint64 {
	if c.remaining == 0 {
		c.update()
	}
	c.remaining--
	return c.results[c.remaining]
}

// NextUint returns a uniformly distributed value in [0, n). Draws whose
// quotient bucket is truncated at the top of the 64-bit range are
// rejected and redrawn, so the result carries no modulo bias. The
// rejection probability per draw is below n/2^64.
//
// n must be positive; NextUint returns 0 when n == 0.
func (c *Cipher) NextUint(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	for {
		r := c.NextUint64()
		v := r % n
		d := r - v
		// d+n-1 wraps only when the bucket starting at d is truncated.
		if d+n-1 >= d {
			return v
		}
	}
}

// Regenerations reports how many regeneration cycles have run since the
// last seeding, counting the cycle performed by seeding itself.
func (c *Cipher) Regenerations() uint64 {
	return c.regens
}
