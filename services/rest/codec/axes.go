package codec

import (
	"devicerest-go/errcode"
	"devicerest-go/x/bufx"
	"devicerest-go/x/conv"
)

// MaxAxesLen is the longest rendering, "-32768,-32768,-32768".
const MaxAxesLen = 20

// FormatAxes renders an accelerometer triple as "X,Y,Z" into dst.
func FormatAxes(dst []byte, x, y, z int16) (int, error) {
	var s [MaxAxesLen]byte
	var num [6]byte
	a := bufx.New(s[:])
	for i, v := range [3]int16{x, y, z} {
		if i > 0 {
			if err := a.AppendByte(','); err != nil {
				return 0, errcode.Truncated
			}
		}
		if err := a.Append(conv.Itoa(num[:], int64(v))); err != nil {
			return 0, errcode.Truncated
		}
	}
	return place(dst, a)
}
