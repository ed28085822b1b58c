package ident

import (
	"encoding/binary"
	"math/bits"
)

// sip13 is an incremental SipHash-1-3 state keyed with k0 = k1 = 0.
type sip13 struct {
	v0, v1, v2, v3 uint64
	tail           [8]byte
	ntail          int
	length         uint64
}

func (s *sip13) reset() {
	s.v0 = 0x736f6d6570736575
	s.v1 = 0x646f72616e646f6d
	s.v2 = 0x6c7967656e657261
	s.v3 = 0x7465646279746573
	s.ntail = 0
	s.length = 0
}

func (s *sip13) round() {
	s.v0 += s.v1
	s.v1 = bits.RotateLeft64(s.v1, 13)
	s.v1 ^= s.v0
	s.v0 = bits.RotateLeft64(s.v0, 32)
	s.v2 += s.v3
	s.v3 = bits.RotateLeft64(s.v3, 16)
	s.v3 ^= s.v2
	s.v0 += s.v3
	s.v3 = bits.RotateLeft64(s.v3, 21)
	s.v3 ^= s.v0
	s.v2 += s.v1
	s.v1 = bits.RotateLeft64(s.v1, 17)
	s.v1 ^= s.v2
	s.v2 = bits.RotateLeft64(s.v2, 32)
}

func (s *sip13) compress(m uint64) {
	s.v3 ^= m
	s.round()
	s.v0 ^= m
}

func (s *sip13) write(p []byte) {
	s.length += uint64(len(p))

	if s.ntail > 0 {
		n := copy(s.tail[s.ntail:], p)
		s.ntail += n
		p = p[n:]
		if s.ntail < 8 {
			return
		}
		s.compress(binary.LittleEndian.Uint64(s.tail[:]))
		s.ntail = 0
	}

	for len(p) >= 8 {
		s.compress(binary.LittleEndian.Uint64(p))
		p = p[8:]
	}

	s.ntail = copy(s.tail[:], p)
}

func (s *sip13) sum64() uint64 {
	b := s.length << 56
	for i := 0; i < s.ntail; i++ {
		b |= uint64(s.tail[i]) << (8 * uint(i))
	}

	s.compress(b)

	s.v2 ^= 0xff
	s.round()
	s.round()
	s.round()

	return s.v0 ^ s.v1 ^ s.v2 ^ s.v3
}
