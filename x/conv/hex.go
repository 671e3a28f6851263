package conv

const hexd = "0123456789ABCDEF"

// U16Hex writes 4-digit uppercase hex without 0x, zero-padded.
// Used to show raw sensor registers in logs.
func U16Hex(buf []byte, n uint16) []byte {
	if len(buf) < 4 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < 4; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}
