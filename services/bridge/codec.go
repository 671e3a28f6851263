package bridge

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"devicerest-go/types"
)

// Payload encodings.
const (
	EncodingText = "text"
	EncodingCBOR = "cbor"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeReading renders r for MQTT. Text is the bare representation; CBOR
// is the full envelope with integer keys.
func EncodeReading(enc string, r types.Reading) ([]byte, error) {
	switch enc {
	case EncodingText, "":
		return r.Payload, nil
	case EncodingCBOR:
		return encMode.Marshal(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}
}

// EncodeStatus renders the outcome of an inbound set request.
func EncodeStatus(enc string, r types.Reading) ([]byte, error) {
	if enc == EncodingCBOR {
		return encMode.Marshal(r)
	}
	return []byte(r.Status), nil
}

// DecodeReading parses a CBOR envelope.
func DecodeReading(b []byte) (types.Reading, error) {
	var r types.Reading
	if err := decMode.Unmarshal(b, &r); err != nil {
		return types.Reading{}, err
	}
	return r, nil
}
