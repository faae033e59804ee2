// clock_rng.go - real-wall-clock Clock and true-randomness RNG backends
//
// Small enough not to warrant splitting per backend the way
// display/input/fs/net do; every real Device assembly (ebiten or
// terminal) shares the same OS clock and RNG regardless of which display
// backend it uses.

package main

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// OSClock reports real wall-clock time.
type OSClock struct{}

func (OSClock) Now() time.Time { return time.Now() }

// CryptoRNG draws true randomness from crypto/rand, used only to seed
// the guest-visible xorshift32 generator and to contribute XOR material
// during Connector seed finalization - never consulted by app logic
// directly.
type CryptoRNG struct{}

func (CryptoRNG) Uint32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a time-derived value rather than panic
		// so a degraded host can still boot.
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(buf[:])
}
