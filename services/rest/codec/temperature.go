package codec

import (
	"devicerest-go/errcode"
	"devicerest-go/x/bufx"
	"devicerest-go/x/conv"
)

// MaxTemperatureLen is the longest rendering, "-128.0000".
const MaxTemperatureLen = 9

// FormatTemperature renders a TMP102-style raw register value as degrees with
// four fractional digits into dst and returns the length.
//
// The high byte is whole degrees and bits 7..4 count sixteenths, printed in
// ten-thousandths (625 per step). Negative samples are converted to magnitude
// first, so the fraction is never negative. When the whole part of a negative
// sample is zero the minus sign is written explicitly ("-0.0625"); clients
// depend on that form.
func FormatTemperature(dst []byte, raw int16) (int, error) {
	mag := uint16(raw)
	sign := int16(1)
	if raw < 0 {
		mag = (uint16(raw) ^ 0xFFFF) + 1
		sign = -1
	}
	intg := int16(mag>>8) * sign
	frac := ((mag >> 4) % 16) * 625

	var s [MaxTemperatureLen]byte
	var num [6]byte
	a := bufx.New(s[:])
	if intg == 0 && sign < 0 {
		if err := a.AppendByte('-'); err != nil {
			return 0, errcode.Truncated
		}
	}
	if err := a.Append(conv.Itoa(num[:], int64(intg))); err != nil {
		return 0, errcode.Truncated
	}
	if err := a.AppendByte('.'); err != nil {
		return 0, errcode.Truncated
	}
	if err := a.Append(conv.PadUtoa(num[:], uint64(frac), 4)); err != nil {
		return 0, errcode.Truncated
	}
	return place(dst, a)
}

// place copies a staged rendering into dst when it fits whole.
func place(dst []byte, a *bufx.Appender) (int, error) {
	n := a.Finalize()
	if n > len(dst) {
		return 0, errcode.Truncated
	}
	return copy(dst, a.Bytes()), nil
}
