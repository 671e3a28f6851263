package codec

import (
	"devicerest-go/errcode"
	"devicerest-go/types"
)

// DecodeSelector maps the col query token to a Color.
// Only the exact one-byte tokens "r", "g" and "b" are accepted.
func DecodeSelector(tok string) (types.Color, error) {
	switch tok {
	case "r":
		return types.ColorRed, nil
	case "g":
		return types.ColorGreen, nil
	case "b":
		return types.ColorBlue, nil
	default:
		return 0, errcode.UnknownToken
	}
}

// DecodeBool maps the on query token: "1" is on, "0" is off.
func DecodeBool(tok string) (bool, error) {
	switch tok {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, errcode.UnknownToken
	}
}
