package quantization

import "fmt"

// PackKey concatenates a PQ code (1 to 4 sub-codes, one byte each) into a
// single big-endian unsigned integer, the hash key used by pkg/pqhash.
// PackKey mirrors the original CodeToKey1 family: a 1-byte code maps
// directly to its value, a 2-byte code to 256*v0+v1, a 4-byte code to
// 16777216*v0 + 65536*v1 + 256*v2 + v3.
func PackKey(code []byte) uint32 {
	switch len(code) {
	case 1:
		return uint32(code[0])
	case 2:
		return uint32(code[0])<<8 | uint32(code[1])
	case 4:
		return uint32(code[0])<<24 | uint32(code[1])<<16 | uint32(code[2])<<8 | uint32(code[3])
	default:
		panic(fmt.Sprintf("quantization: PackKey supports code lengths 1, 2 or 4, got %d", len(code)))
	}
}

// UnpackKey is the inverse of PackKey: it recovers the M sub-codes packed
// into key, given the expected number of sub-codes m (one of 1, 2, 4).
func UnpackKey(key uint32, m int) []byte {
	code := make([]byte, m)
	switch m {
	case 1:
		code[0] = byte(key)
	case 2:
		code[0] = byte(key >> 8)
		code[1] = byte(key)
	case 4:
		code[0] = byte(key >> 24)
		code[1] = byte(key >> 16)
		code[2] = byte(key >> 8)
		code[3] = byte(key)
	default:
		panic(fmt.Sprintf("quantization: UnpackKey supports m of 1, 2 or 4, got %d", m))
	}
	return code
}
