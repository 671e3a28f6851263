package conv

// Itoa writes base-10 representation of n into the tail of buf and returns the
// used slice. buf should be length >= 20 for int64. Negative numbers supported.
// No allocations; no fmt/strconv dependency.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	neg := n < 0
	var u uint64
	if neg {
		u = uint64(-n)
	} else {
		u = uint64(n)
	}
	d := Utoa(buf, u)
	i := len(buf) - len(d)
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
