package core

// checksumModulus keeps checksums in a fixed 4-digit space, matching
// the link protocol's integrity field width.
const checksumModulus = 10000

// Checksum computes the integrity checksum over an unencoded payload:
// the byte sum modulo 10000.
func Checksum(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum % checksumModulus
}

// ForgeChecksum returns a checksum guaranteed to mismatch the payload's
// true checksum. candidate supplies the randomness; the result is only
// nudged when the candidate accidentally collides.
func ForgeChecksum(data []byte, candidate uint32) uint32 {
	forged := candidate % checksumModulus
	if forged == Checksum(data) {
		forged = (forged + 1) % checksumModulus
	}
	return forged
}
