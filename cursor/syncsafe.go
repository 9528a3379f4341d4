package cursor

// syncsafeInvalid marks a syncsafe decode that saw a set high bit in
// one of the four bytes, which id3v2 defines as invalid.
const syncsafeInvalid = ^uint32(0)

// decodeSyncsafe reinterprets four bytes, each contributing its low
// seven bits, as a 28-bit big-endian integer. It returns
// syncsafeInvalid if any byte has its top bit set.
func decodeSyncsafe(data []byte) uint32 {
	_ = data[3]

	if data[0]&0x80 != 0 || data[1]&0x80 != 0 ||
		data[2]&0x80 != 0 || data[3]&0x80 != 0 {
		return syncsafeInvalid
	}

	return uint32(data[0])<<21 | uint32(data[1])<<14 |
		uint32(data[2])<<7 | uint32(data[3])
}

// encodeSyncsafe is the inverse of decodeSyncsafe. v must fit in 28
// bits; callers are responsible for checking that beforehand (the
// writer refuses to emit an oversized tag rather than truncate one
// silently).
func encodeSyncsafe(v uint32) [4]byte {
	return [4]byte{
		byte((v >> 21) & 0x7f),
		byte((v >> 14) & 0x7f),
		byte((v >> 7) & 0x7f),
		byte(v & 0x7f),
	}
}

// MaxSyncsafe is the largest value that can be represented by a
// 28-bit syncsafe integer.
const MaxSyncsafe = 1<<28 - 1
