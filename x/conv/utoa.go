package conv

// Utoa writes base-10 representation of n into the tail of buf and returns the
// used slice. buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// PadUtoa is Utoa left-padded with '0' to at least width digits.
// Width is capped by len(buf).
func PadUtoa(buf []byte, n uint64, width int) []byte {
	d := Utoa(buf, n)
	i := len(buf) - len(d)
	for len(buf)-i < width && i > 0 {
		i--
		buf[i] = '0'
	}
	return buf[i:]
}
