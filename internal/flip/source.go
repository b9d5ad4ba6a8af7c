// Package flip provides independent streams of fair coin-flip outcomes.
//
// A Source is backed by a PCG generator and unpacks 64 outcomes from every
// 64-bit word it draws. Unused bits are kept between calls, so the outcome
// sequence produced for a seed does not depend on how callers slice it into
// batches.
package flip

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Outcome is the result of a single fair coin flip.
type Outcome uint8

const (
	Tails Outcome = iota
	Heads
)

// String returns "H" or "T".
func (o Outcome) String() string {
	if o == Heads {
		return "H"
	}
	return "T"
}

// Stream produces outcomes in batches. The returned slice belongs to the
// stream and is only valid until the next call.
type Stream interface {
	NextBatch(size int) []Outcome
}

// Seed is the 128-bit state used to initialise a PCG stream.
type Seed struct {
	Hi, Lo uint64
}

// Source is a batched, PCG-backed Stream. It is not safe for concurrent use;
// every worker owns its own Source.
type Source struct {
	pcg   *mrand.PCG
	word  uint64
	bits  int
	buf   []Outcome
	drawn int64
}

// NewSource returns a Source seeded with seed.
func NewSource(seed Seed) *Source {
	return &Source{pcg: mrand.NewPCG(seed.Hi, seed.Lo)}
}

// Reset reseeds the source and discards any buffered bits. The batch buffer
// is kept for reuse.
func (s *Source) Reset(seed Seed) {
	s.pcg.Seed(seed.Hi, seed.Lo)
	s.word, s.bits, s.drawn = 0, 0, 0
}

// NextBatch returns size outcomes. A non-positive size yields an empty batch.
func (s *Source) NextBatch(size int) []Outcome {
	if size <= 0 {
		return s.buf[:0]
	}
	if cap(s.buf) < size {
		s.buf = make([]Outcome, size)
	}
	out := s.buf[:size]
	i := 0
	// drain buffered bits first
	for ; i < size && s.bits > 0; i++ {
		out[i] = Outcome(s.word & 1)
		s.word >>= 1
		s.bits--
	}
	for i+64 <= size {
		w := s.pcg.Uint64()
		for j := 0; j < 64; j++ {
			out[i+j] = Outcome(w & 1)
			w >>= 1
		}
		i += 64
	}
	if i < size {
		s.word, s.bits = s.pcg.Uint64(), 64
		for ; i < size; i++ {
			out[i] = Outcome(s.word & 1)
			s.word >>= 1
			s.bits--
		}
	}
	s.drawn += int64(size)
	return out
}

// Drawn reports how many outcomes have been handed out since the last seed.
func (s *Source) Drawn() int64 { return s.drawn }

// DeriveSeed maps a base seed and a set of labels (mode, run, parameter...)
// to an independent stream seed. Equal inputs always give equal seeds.
func DeriveSeed(base uint64, labels ...uint64) Seed {
	buf := make([]byte, 0, 8*(len(labels)+2))
	buf = binary.LittleEndian.AppendUint64(buf, base)
	for _, l := range labels {
		buf = binary.LittleEndian.AppendUint64(buf, l)
	}
	hi := xxhash.Sum64(buf)
	buf = binary.LittleEndian.AppendUint64(buf, hi)
	return Seed{Hi: hi, Lo: xxhash.Sum64(buf)}
}

// RandomBaseSeed draws a base seed from the operating system.
func RandomBaseSeed() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// CountHeads counts the heads in a batch.
func CountHeads(batch []Outcome) int {
	n := 0
	for _, o := range batch {
		n += int(o)
	}
	return n
}
